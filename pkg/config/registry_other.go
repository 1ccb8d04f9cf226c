//go:build !windows

package config

import "errors"

func loadFromRegistry(*Configuration) error {
	return errors.New("registry configuration is only available on Windows")
}
