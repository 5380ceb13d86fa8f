package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// SetValue sets a configuration value by key
// Supported keys:
//   - output_dir: string - Where downloads land
//   - base_url: string - Pinned API server (skips discovery)
//   - days: int - Only sync files created within the last N days
//   - groups: comma-separated list - Group name filter
//   - verify: string - Skip gate (existence, size, checksum)
//   - concurrency: int - Download worker count
//   - extract: bool - Unpack downloaded archives
//   - log_level: string - Logging level (debug, info, warn, error)
//   - email: string - Vault account email
//   - password: string - Vault account password
func (c *Config) SetValue(key, value string) error {
	switch key {
	case "output_dir":
		c.Settings.OutputDir = value
	case "base_url":
		c.Settings.BaseURL = strings.TrimRight(value, "/")
	case "days":
		days, err := strconv.Atoi(value)
		if err != nil || days < 0 {
			return fmt.Errorf("invalid value for %s: %s", key, value)
		}
		c.Settings.Days = days
	case "groups":
		groups := []string{}
		for _, g := range strings.Split(value, ",") {
			if g = strings.TrimSpace(g); g != "" {
				groups = append(groups, g)
			}
		}
		c.Settings.Groups = groups
	case "verify":
		c.Settings.Verify = value
	case "concurrency":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid value for %s: %s", key, value)
		}
		c.Settings.Concurrency = n
	case "extract":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %s", key, value)
		}
		c.Settings.Extract = boolVal
	case "log_level":
		c.Settings.LogLevel = value
	case "email":
		c.Auth.Email = value
	case "password":
		c.Auth.Password = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return c.Validate()
}

// GetValue returns a configuration value by key as a string.
func (c *Config) GetValue(key string) (string, error) {
	switch key {
	case "output_dir":
		return c.Settings.OutputDir, nil
	case "base_url":
		return c.Settings.BaseURL, nil
	case "days":
		return strconv.Itoa(c.Settings.Days), nil
	case "groups":
		return strings.Join(c.Settings.Groups, ","), nil
	case "verify":
		return c.Settings.Verify, nil
	case "concurrency":
		return strconv.Itoa(c.Settings.Concurrency), nil
	case "extract":
		return strconv.FormatBool(c.Settings.Extract), nil
	case "log_level":
		return c.Settings.LogLevel, nil
	case "email":
		return c.Auth.Email, nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// ToMap converts the settings to a flat string map keyed by yaml tag.
// This is useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string)

	settingsValue := reflect.ValueOf(c.Settings)
	settingsType := settingsValue.Type()

	for i := 0; i < settingsValue.NumField(); i++ {
		field := settingsType.Field(i)
		yamlTag := field.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}
		yamlKey := strings.Split(yamlTag, ",")[0]

		fieldValue := settingsValue.Field(i)
		var strValue string

		if d, ok := fieldValue.Interface().(time.Duration); ok {
			strValue = d.String()
		} else {
			switch fieldValue.Kind() {
			case reflect.Bool:
				strValue = strconv.FormatBool(fieldValue.Bool())
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
				strValue = strconv.FormatInt(fieldValue.Int(), 10)
			case reflect.Slice:
				strValue = fmt.Sprintf("%v", fieldValue.Interface())
			case reflect.String:
				strValue = fieldValue.String()
			default:
				strValue = fmt.Sprintf("%v", fieldValue.Interface())
			}
		}

		result[yamlKey] = strValue
	}

	return result
}
