package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Staged file names the remote client expects. The capture file name is part
// of the sync protocol and must not be changed independently of the client.
const (
	IndexFile    = "index.org"
	AgendasFile  = "agendas.org"
	ManifestFile = "checksums.dat"
)

// DefaultCaptureFile is the staged capture/inbox mirror file name.
const DefaultCaptureFile = "capture.org"

// PriorityRange is the fixed priority-letter range advertised in the index
// document.
const PriorityRange = "A B C"

// AgendaDef is one configured saved-view definition. Kind is one of "todo",
// "tags", "search" (exportable) or "block" (ordered list of sub-definitions);
// anything else is treated as interactive and skipped on export.
type AgendaDef struct {
	Key         string      `yaml:"key"`
	Description string      `yaml:"description"`
	Kind        string      `yaml:"kind"`
	Match       string      `yaml:"match"`
	Blocks      []AgendaDef `yaml:"blocks"`
}

// Hooks are shell command lists run around each phase.
type Hooks struct {
	PrePush  []string `yaml:"pre_push"`
	PostPush []string `yaml:"post_push"`
	PrePull  []string `yaml:"pre_pull"`
	PostPull []string `yaml:"post_pull"`
}

// Config is the full configuration surface.
type Config struct {
	Dir        string `yaml:"dir"`         // canonical root
	StagingDir string `yaml:"staging_dir"` // staging root

	// Files lists canonical documents relative to Dir; empty means every
	// *.org file directly under Dir.
	Files []string `yaml:"files"`

	InboxFile   string `yaml:"inbox_file"`   // canonical inbox, relative to Dir
	CaptureFile string `yaml:"capture_file"` // staged capture file name

	ForceIDs *bool  `yaml:"force_ids"` // default true
	Digest   string `yaml:"digest"`    // md5, sha1 or sha256

	// RemoteWins lists fields where the remote value always overwrites a
	// mismatched canonical value; the single entry "all" covers every field.
	RemoteWins []string `yaml:"remote_wins"`

	// TodoKeywords holds keyword groups; within a group, keywords after the
	// "|" marker are done states. Without a marker the last keyword is done.
	TodoKeywords [][]string `yaml:"todo_keywords"`

	TagGroups []string    `yaml:"tag_groups"`
	Drawers   []string    `yaml:"drawers"`
	Agendas   []AgendaDef `yaml:"agendas"`
	Hooks     Hooks       `yaml:"hooks"`
}

// Default returns a config with every field at its default.
func Default() *Config {
	return &Config{
		InboxFile:    "inbox.org",
		CaptureFile:  DefaultCaptureFile,
		Digest:       "sha256",
		TodoKeywords: [][]string{{"TODO", "|", "DONE"}},
		Drawers:      []string{"PROPERTIES", "LOGBOOK"},
	}
}

// DefaultPath returns the config file location, honoring ORGSTAGE_CONFIG.
func DefaultPath() string {
	if env := os.Getenv("ORGSTAGE_CONFIG"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "orgstage", "orgstage.yml")
}

// Load reads the config file at path, falling back to defaults when the file
// does not exist, then applies env overrides (ORGSTAGE_DIR, ORGSTAGE_STAGING).
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(ExpandHome(path))
	switch {
	case os.IsNotExist(err):
		// defaults + env only
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if env := os.Getenv("ORGSTAGE_DIR"); env != "" {
		cfg.Dir = env
	}
	if env := os.Getenv("ORGSTAGE_STAGING"); env != "" {
		cfg.StagingDir = env
	}
	cfg.Dir = ExpandHome(cfg.Dir)
	cfg.StagingDir = ExpandHome(cfg.StagingDir)

	if cfg.CaptureFile == "" {
		cfg.CaptureFile = DefaultCaptureFile
	}
	if cfg.InboxFile == "" {
		cfg.InboxFile = "inbox.org"
	}
	if cfg.Digest == "" {
		cfg.Digest = "sha256"
	}
	if len(cfg.TodoKeywords) == 0 {
		cfg.TodoKeywords = [][]string{{"TODO", "|", "DONE"}}
	}
	if len(cfg.Drawers) == 0 {
		cfg.Drawers = []string{"PROPERTIES"}
	}
	return cfg, nil
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}

// ForceIDsEnabled reports whether identifiers are forced onto exported nodes
// (the default).
func (c *Config) ForceIDsEnabled() bool {
	if c.ForceIDs == nil {
		return true
	}
	return *c.ForceIDs
}

// InboxPath is the canonical inbox file location.
func (c *Config) InboxPath() string {
	return filepath.Join(c.Dir, c.InboxFile)
}

// AllKeywords returns every configured TODO keyword across all groups,
// excluding group markers.
func (c *Config) AllKeywords() []string {
	var out []string
	for _, group := range c.TodoKeywords {
		for _, kw := range group {
			if kw != "|" {
				out = append(out, kw)
			}
		}
	}
	return out
}

// IsDone reports whether kw is a done state in any group.
func (c *Config) IsDone(kw string) bool {
	for _, group := range c.TodoKeywords {
		done := false
		for i, k := range group {
			if k == "|" {
				done = true
				continue
			}
			if done && k == kw {
				return true
			}
			// without a marker, only the last keyword is done
			if !done && i == len(group)-1 && !contains(group, "|") && k == kw {
				return true
			}
		}
	}
	return false
}

// LastDone returns the final done keyword of the first group, used when the
// archive sentinel marks an entry done.
func (c *Config) LastDone() string {
	if len(c.TodoKeywords) == 0 {
		return "DONE"
	}
	group := c.TodoKeywords[0]
	if len(group) == 0 {
		return "DONE"
	}
	return group[len(group)-1]
}

// RemoteWinsField reports whether the field is configured to always prefer
// the remote value.
func (c *Config) RemoteWinsField(field string) bool {
	for _, f := range c.RemoteWins {
		if f == "all" || f == field {
			return true
		}
	}
	return false
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
