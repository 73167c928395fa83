package main

import "orgstage/cmd/orgstage/cmd"

func main() {
	cmd.Execute()
}
