package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	AppName               = "devchron"
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "devchron.db"
	DefaultLogName        = "devchron.log"
	DefaultTasksKey       = "@devchron_tasks"
	DefaultUpcomingCount  = 3
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Keymap struct {
	Quit         string `toml:"quit"`
	Add          string `toml:"add"`
	Up           string `toml:"up"`
	Down         string `toml:"down"`
	Left         string `toml:"left"`
	Right        string `toml:"right"`
	Toggle       string `toml:"toggle"`
	Delete       string `toml:"delete"`
	Detail       string `toml:"detail"`
	Confirm      string `toml:"confirm"`
	Cancel       string `toml:"cancel"`
	Edit         string `toml:"edit"`
	Filter       string `toml:"filter"`
	SwitchView   string `toml:"switch_view"`
	PrevMonth    string `toml:"prev_month"`
	NextMonth    string `toml:"next_month"`
	Today        string `toml:"today"`
	PriorityUp   string `toml:"priority_up"`
	PriorityDown string `toml:"priority_down"`
	DueForward   string `toml:"due_forward"`
	DueBack      string `toml:"due_back"`
	SortDue      string `toml:"sort_due"`
	SortPriority string `toml:"sort_priority"`
	SortCreated  string `toml:"sort_created"`
}

type Storage struct {
	Backend       string `toml:"backend"`
	TasksKey      string `toml:"tasks_key"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`
}

type Config struct {
	DBPath        string  `toml:"db_path"`
	LogPath       string  `toml:"log_path"`
	Debug         bool    `toml:"debug"`
	DefaultFilter string  `toml:"default_filter"`
	DefaultSort   string  `toml:"default_sort"`
	UpcomingCount int     `toml:"upcoming_count"`
	Storage       Storage `toml:"storage"`
	Keys          Keymap  `toml:"keys"`
}

// ResolveConfigPath returns <user config dir>/devchron/config.toml, falling
// back to the working directory when no config dir is known.
func ResolveConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, AppName, DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing the defaults there first if
// the file does not exist. Relative db and log paths are resolved against the
// config file's directory.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg.resolve(filepath.Dir(path)), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg.resolve(filepath.Dir(path)), nil
}

func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendMemory:
	case BackendRedis:
		if c.Storage.RedisAddr == "" {
			return errors.New("storage.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown storage.backend %q", c.Storage.Backend)
	}
	if c.UpcomingCount < 0 {
		return fmt.Errorf("upcoming_count must not be negative, got %d", c.UpcomingCount)
	}
	return nil
}

func (c *Config) fillDefaults() {
	def := defaultConfig()
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	}
	if c.LogPath == "" {
		c.LogPath = def.LogPath
	}
	if c.DefaultFilter == "" {
		c.DefaultFilter = def.DefaultFilter
	}
	if c.DefaultSort == "" {
		c.DefaultSort = def.DefaultSort
	}
	if c.UpcomingCount == 0 {
		c.UpcomingCount = def.UpcomingCount
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = def.Storage.Backend
	}
	if c.Storage.TasksKey == "" {
		c.Storage.TasksKey = def.Storage.TasksKey
	}
	c.Keys = c.Keys.withDefaults(def.Keys)
}

func (c Config) resolve(dir string) Config {
	if !filepath.IsAbs(c.DBPath) && filepath.VolumeName(c.DBPath) == "" && !hasScheme(c.DBPath) {
		c.DBPath = filepath.Join(dir, c.DBPath)
	}
	if !filepath.IsAbs(c.LogPath) {
		c.LogPath = filepath.Join(dir, c.LogPath)
	}
	return c
}

func hasScheme(p string) bool {
	return len(p) > 5 && p[:5] == "file:"
}

// withDefaults fills every unset binding from def so an old config file
// keeps working after new keys are introduced.
func (k Keymap) withDefaults(def Keymap) Keymap {
	fill := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	fill(&k.Quit, def.Quit)
	fill(&k.Add, def.Add)
	fill(&k.Up, def.Up)
	fill(&k.Down, def.Down)
	fill(&k.Left, def.Left)
	fill(&k.Right, def.Right)
	fill(&k.Toggle, def.Toggle)
	fill(&k.Delete, def.Delete)
	fill(&k.Detail, def.Detail)
	fill(&k.Confirm, def.Confirm)
	fill(&k.Cancel, def.Cancel)
	fill(&k.Edit, def.Edit)
	fill(&k.Filter, def.Filter)
	fill(&k.SwitchView, def.SwitchView)
	fill(&k.PrevMonth, def.PrevMonth)
	fill(&k.NextMonth, def.NextMonth)
	fill(&k.Today, def.Today)
	fill(&k.PriorityUp, def.PriorityUp)
	fill(&k.PriorityDown, def.PriorityDown)
	fill(&k.DueForward, def.DueForward)
	fill(&k.DueBack, def.DueBack)
	fill(&k.SortDue, def.SortDue)
	fill(&k.SortPriority, def.SortPriority)
	fill(&k.SortCreated, def.SortCreated)
	return k
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func Default() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		DBPath:        DefaultDBName,
		LogPath:       DefaultLogName,
		DefaultFilter: "all",
		DefaultSort:   "due",
		UpcomingCount: DefaultUpcomingCount,
		Storage: Storage{
			Backend:     BackendSQLite,
			TasksKey:    DefaultTasksKey,
			RedisPrefix: AppName + ":",
		},
		Keys: Keymap{
			Quit:         "q",
			Add:          "a",
			Up:           "k",
			Down:         "j",
			Left:         "h",
			Right:        "l",
			Toggle:       " ",
			Delete:       "d",
			Detail:       "enter",
			Confirm:      "enter",
			Cancel:       "esc",
			Edit:         "e",
			Filter:       "f",
			SwitchView:   "tab",
			PrevMonth:    "<",
			NextMonth:    ">",
			Today:        "t",
			PriorityUp:   "+",
			PriorityDown: "-",
			DueForward:   "]",
			DueBack:      "[",
			SortDue:      "sd",
			SortPriority: "sp",
			SortCreated:  "sc",
		},
	}
}
