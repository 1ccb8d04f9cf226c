//go:build windows

package config

import (
	"fmt"
	"log"
	"strconv"

	"golang.org/x/sys/windows/registry"
)

// loadFromRegistry loads configuration values from HKLM\SOFTWARE\AppStore\Config.
func loadFromRegistry(config *Configuration) error {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, RegistryPath, registry.READ)
	if err != nil {
		return fmt.Errorf("failed to open registry key %s: %w", RegistryPath, err)
	}
	defer key.Close()

	loadStringFromRegistry(key, "LogLevel", &config.LogLevel)
	loadStringFromRegistry(key, "LogPath", &config.LogPath)
	loadStringFromRegistry(key, "CatalogBaseURL", &config.CatalogBaseURL)
	loadStringFromRegistry(key, "AgentListenAddr", &config.AgentListenAddr)
	loadStringFromRegistry(key, "TempPath", &config.TempPath)
	loadIntFromRegistry(key, "DownloadTimeoutSeconds", &config.DownloadTimeoutSeconds)
	loadIntFromRegistry(key, "InstallerTimeoutMinutes", &config.InstallerTimeoutMinutes)
	loadBoolFromRegistry(key, "Debug", &config.Debug)
	loadBoolFromRegistry(key, "RevealManualDownloads", &config.RevealManualDownloads)
	return nil
}

func loadStringFromRegistry(key registry.Key, valueName string, target *string) {
	if val, _, err := key.GetStringValue(valueName); err == nil && val != "" {
		*target = val
		log.Printf("Registry: Loaded %s = %s", valueName, val)
	}
}

// loadBoolFromRegistry accepts "true"/"false", "1"/"0" strings or a DWORD.
func loadBoolFromRegistry(key registry.Key, valueName string, target *bool) {
	if val, _, err := key.GetStringValue(valueName); err == nil {
		if parsed, parseErr := strconv.ParseBool(val); parseErr == nil {
			*target = parsed
			return
		}
	}
	if val, _, err := key.GetIntegerValue(valueName); err == nil {
		*target = val != 0
	}
}

func loadIntFromRegistry(key registry.Key, valueName string, target *int) {
	if val, _, err := key.GetStringValue(valueName); err == nil {
		if parsed, parseErr := strconv.Atoi(val); parseErr == nil {
			*target = parsed
			return
		}
	}
	if val, _, err := key.GetIntegerValue(valueName); err == nil {
		*target = int(val)
	}
}
