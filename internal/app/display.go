// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"image"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/device_motion/internal/config"
	"github.com/relabs-tech/device_motion/internal/motion"
	"github.com/relabs-tech/device_motion/internal/telemetry"
)

const (
	displayWidth      = 128
	displayHeight     = 64
	displayLineHeight = 13 // basicfont.Face7x13
)

var categoryHeadings = map[motion.Category]string{
	motion.CategoryAttitude:         "Attitude",
	motion.CategoryRotationRate:     "Rotation rate",
	motion.CategoryGravity:          "Gravity",
	motion.CategoryUserAcceleration: "User accel",
}

// displayLines lays out one category of f for the OLED: a heading and one
// "<label> <pct>% <sign><raw>" line per axis.
func displayLines(category motion.Category, f telemetry.Frame, have bool) []string {
	heading, ok := categoryHeadings[category]
	if !ok {
		heading = string(category)
	}
	if !have {
		return []string{heading, "Waiting..."}
	}

	lines := []string{heading}
	section, ok := motion.SectionFor(category)
	if !ok {
		return append(lines, "no layout")
	}
	for _, field := range section.Fields {
		st, _ := f.Channel(field.Channel)
		lines = append(lines, fmt.Sprintf("%s %3.0f%% %s%.2f",
			field.Label, st.Normalized*100, motion.SignString(st.Raw), math.Abs(st.Raw)))
	}
	return lines
}

// renderLines draws up to four lines of text into a display-sized image.
func renderLines(lines []string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayWidth, displayHeight))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		y := (i + 1) * displayLineHeight
		if y > displayHeight {
			break
		}
		drawer.Dot = fixed.P(0, y)
		drawer.DrawString(line)
	}
	return img
}

func drawLines(dev *ssd1306.Dev, lines []string) error {
	return dev.Draw(dev.Bounds(), renderLines(lines), image.Point{})
}

// RunDisplay shows one category of the published frames on an SSD1306
// OLED until ctx is done.
func RunDisplay(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open(cfg.DisplayI2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus %q: %w", cfg.DisplayI2CBus, err)
	}
	defer bus.Close()

	opts := ssd1306.DefaultOpts
	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	defer dev.Halt()
	log.Info("display initialized", zap.String("bus", bus.String()), zap.String("category", string(cfg.DisplayCategory)))

	if err := drawLines(dev, []string{"Device motion", "Connecting..."}); err != nil {
		log.Warn("display: splash failed", zap.Error(err))
	}

	client, err := telemetry.Connect(cfg.MQTTBroker, cfg.MQTTClientIDDisplay, log)
	if err != nil {
		return err
	}
	defer client.Disconnect(telemetry.DisconnectQuiesce)

	store := &FrameStore{}
	if err := telemetry.SubscribeFrames(client, cfg.TopicMotion, log, store.Set); err != nil {
		return err
	}

	ticker := time.NewTicker(cfg.DisplayInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("display: shutting down")
			return nil
		case <-ticker.C:
			f, have := store.Latest()
			if err := drawLines(dev, displayLines(cfg.DisplayCategory, f, have)); err != nil {
				log.Warn("display: update failed", zap.Error(err))
			}
		}
	}
}
