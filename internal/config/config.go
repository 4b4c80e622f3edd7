// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-ini/ini"
	"gopkg.in/yaml.v3"

	"github.com/relabs-tech/device_motion/internal/motion"
)

// Motion sources.
const (
	SourceMock = "mock"
	SourceIMU  = "imu"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string

	// Topics
	TopicMotion  string
	TopicControl string

	// Sampling
	HardwareTier     motion.Tier
	SampleIntervalMS int // 0 keeps the tier interval
	HysteresisWindow int // 0 keeps the tier window
	MotionSource     string

	// IMU Hardware
	IMUSPIDevice string
	IMUCSPin     string

	// IMU Sensor Ranges
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUAccelRange byte
	// Gyroscope: 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s
	IMUGyroRange byte

	// Timing
	StatusLogInterval int // milliseconds

	LogLevel string

	// Web Server
	WebServerPort int

	// Display
	DisplayI2CBus         string
	DisplayUpdateInterval int // milliseconds
	DisplayCategory       motion.Category
}

// Package-level singleton: InitGlobal sets it once, Get reads it under RLock.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a Config with every optional key at its default value.
func Default() *Config {
	return &Config{
		MQTTClientIDProducer:  "motion-producer",
		MQTTClientIDConsole:   "motion-console",
		MQTTClientIDWeb:       "motion-web",
		MQTTClientIDDisplay:   "motion-display",
		TopicMotion:           "motion/normalized",
		TopicControl:          "motion/control",
		HardwareTier:          motion.TierCapable,
		MotionSource:          SourceMock,
		StatusLogInterval:     1000,
		LogLevel:              "info",
		WebServerPort:         8080,
		DisplayUpdateInterval: 200,
		DisplayCategory:       motion.CategoryAttitude,
	}
}

// Load reads the configuration file and returns a Config struct.
// Files ending in .yaml or .yml hold a flat mapping of the same keys;
// anything else is read as KEY=VALUE lines with # comments.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	var values map[string]string
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		values, err = parseYAML(data)
	default:
		values, err = parseKeyValue(data)
	}
	if err != nil {
		return nil, err
	}

	cfg := Default()
	for _, key := range sortedKeys(values) {
		if err := cfg.setValue(key, values[key]); err != nil {
			return nil, fmt.Errorf("config key %s: %w", key, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseKeyValue(data []byte) (map[string]string, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		KeyValueDelimiters:       "=",
		SpaceBeforeInlineComment: true,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	values := make(map[string]string)
	for _, sec := range file.Sections() {
		for _, key := range sec.Keys() {
			values[key.Name()] = strings.TrimSpace(key.Value())
		}
	}
	return values, nil
}

func parseYAML(data []byte) (map[string]string, error) {
	raw := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	values := make(map[string]string, len(raw))
	for key, v := range raw {
		switch v.(type) {
		case map[string]interface{}, []interface{}:
			return nil, fmt.Errorf("config key %s: nested values are not supported", key)
		case nil:
			values[key] = ""
		default:
			values[key] = strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return values, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_MOTION":
		c.TopicMotion = value
	case "TOPIC_CONTROL":
		c.TopicControl = value

	// Sampling
	case "HARDWARE_TIER":
		tier, err := motion.ParseTier(value)
		if err != nil {
			return err
		}
		c.HardwareTier = tier
	case "SAMPLE_INTERVAL_MS":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SAMPLE_INTERVAL_MS %q: %w", value, err)
		}
		if interval < 0 {
			return fmt.Errorf("SAMPLE_INTERVAL_MS must not be negative, got %d", interval)
		}
		c.SampleIntervalMS = interval
	case "HYSTERESIS_WINDOW":
		size, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid HYSTERESIS_WINDOW %q: %w", value, err)
		}
		if size < 0 {
			return fmt.Errorf("HYSTERESIS_WINDOW must not be negative, got %d", size)
		}
		c.HysteresisWindow = size
	case "MOTION_SOURCE":
		c.MotionSource = strings.ToLower(value)

	// IMU Hardware
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value

	// IMU Sensor Ranges
	case "IMU_ACCEL_RANGE":
		rangeVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_ACCEL_RANGE %q: %w", value, err)
		}
		if rangeVal < 0 || rangeVal > 3 {
			return fmt.Errorf("IMU_ACCEL_RANGE must be 0-3 (0=±2g, 1=±4g, 2=±8g, 3=±16g), got %d", rangeVal)
		}
		c.IMUAccelRange = byte(rangeVal)
	case "IMU_GYRO_RANGE":
		rangeVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_GYRO_RANGE %q: %w", value, err)
		}
		if rangeVal < 0 || rangeVal > 3 {
			return fmt.Errorf("IMU_GYRO_RANGE must be 0-3 (0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s), got %d", rangeVal)
		}
		c.IMUGyroRange = byte(rangeVal)

	// Timing
	case "STATUS_LOG_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid STATUS_LOG_INTERVAL %q: %w", value, err)
		}
		c.StatusLogInterval = interval

	case "LOG_LEVEL":
		c.LogLevel = value

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// Display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval
	case "DISPLAY_CATEGORY":
		category, ok := motion.ParseCategory(value)
		if !ok || category == motion.CategoryOther {
			return fmt.Errorf("invalid DISPLAY_CATEGORY %q", value)
		}
		c.DisplayCategory = category

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	switch c.MotionSource {
	case SourceMock:
	case SourceIMU:
		if c.IMUSPIDevice == "" {
			return fmt.Errorf("IMU_SPI_DEVICE is required when MOTION_SOURCE=imu")
		}
		if c.IMUCSPin == "" {
			return fmt.Errorf("IMU_CS_PIN is required when MOTION_SOURCE=imu")
		}
	default:
		return fmt.Errorf("MOTION_SOURCE must be %q or %q, got %q", SourceMock, SourceIMU, c.MotionSource)
	}
	if c.StatusLogInterval <= 0 {
		return fmt.Errorf("STATUS_LOG_INTERVAL must be positive")
	}
	if c.DisplayUpdateInterval <= 0 {
		return fmt.Errorf("DISPLAY_UPDATE_INTERVAL must be positive")
	}
	if c.WebServerPort <= 0 || c.WebServerPort > 65535 {
		return fmt.Errorf("WEB_SERVER_PORT must be 1-65535, got %d", c.WebServerPort)
	}
	return nil
}

// MotionConfig returns the pipeline settings for the configured hardware
// tier with SAMPLE_INTERVAL_MS and HYSTERESIS_WINDOW applied on top.
func (c *Config) MotionConfig() (motion.Config, error) {
	mc := motion.ConfigForTier(c.HardwareTier)
	if c.SampleIntervalMS > 0 {
		mc.SampleInterval = time.Duration(c.SampleIntervalMS) * time.Millisecond
	}
	if c.HysteresisWindow > 0 {
		mc.WindowSize = c.HysteresisWindow
	}
	if err := mc.Validate(); err != nil {
		return motion.Config{}, err
	}
	return mc, nil
}

// StatusInterval is STATUS_LOG_INTERVAL as a duration.
func (c *Config) StatusInterval() time.Duration {
	return time.Duration(c.StatusLogInterval) * time.Millisecond
}

// DisplayInterval is DISPLAY_UPDATE_INTERVAL as a duration.
func (c *Config) DisplayInterval() time.Duration {
	return time.Duration(c.DisplayUpdateInterval) * time.Millisecond
}

// InitGlobal initializes the global configuration from file.
// Only the first call loads anything; later calls are no-ops.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance, or nil before InitGlobal.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
