package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/womat/debug"
)

// Watch monitors the configuration file and calls onChange with the newly
// read configuration each time the file is written. It runs until quit is
// closed.
//
// A reload does not reopen the debug file, the Debug.File of the reloaded
// configuration is nil. If a reload fails, the error is logged and onChange
// is not called.
func (c *Config) Watch(quit <-chan struct{}, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	path := c.Flag.ConfigFile
	if err = watcher.Add(path); err != nil {
		return err
	}

	debug.InfoLog.Printf("watching config file %s", path)

	for {
		select {
		case <-quit:
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// editors often save by rename, so create events count as well
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			n, err := c.reload()
			if err != nil {
				debug.ErrorLog.Printf("reload config file %s: %v", path, err)
				continue
			}

			debug.InfoLog.Printf("config file %s reloaded", path)
			onChange(n)

			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			debug.ErrorLog.Printf("config watcher: %v", err)
		}
	}
}

// reload reads the configuration file into a new Config with the same flags.
func (c *Config) reload() (*Config, error) {
	n := NewConfig()
	n.Flag = c.Flag

	if err := n.readConfigFile(); err != nil {
		return nil, err
	}
	if n.Flag.Debug != "" {
		n.Debug.FlagString = n.Flag.Debug
	}

	var err error
	if n.Debug.Flag, err = LogFlag(n.Debug.FlagString); err != nil {
		return nil, err
	}

	n.convert()
	if err = n.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return n, nil
}
