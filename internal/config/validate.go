package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateTMDB() error {
	for key, value := range map[string]string{
		"tmdb.base_url":       c.TMDB.BaseURL,
		"tmdb.image_base_url": c.TMDB.ImageBaseURL,
	} {
		parsed, err := url.Parse(value)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", key, value)
		}
	}
	return ensurePositiveMap(map[string]int{
		"tmdb.request_timeout": c.TMDB.RequestTimeout,
		"storage.lock_timeout": c.Storage.LockTimeout,
	})
}

func (c *Config) validateSearch() error {
	if c.Search.ResultLimit < 1 || c.Search.ResultLimit > 20 {
		return errors.New("search.result_limit must be between 1 and 20")
	}
	if c.Search.PersonCreditLimit < 1 {
		return errors.New("search.person_credit_limit must be >= 1")
	}
	return nil
}

func (c *Config) validateExport() error {
	if filepath.Base(c.Export.FileName) != c.Export.FileName {
		return fmt.Errorf("export.file_name must be a bare file name, got %q", c.Export.FileName)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
