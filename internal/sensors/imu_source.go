// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"
)

// IMUOptions wires and configures an MPU9250 on SPI.
type IMUOptions struct {
	SPIDevice string
	CSPin     string
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	AccelRange byte
	// Gyroscope: 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s
	GyroRange byte
	// GravityAlpha is the gravity low-pass weight, see NewMotionEstimator.
	GravityAlpha float64
}

// Full-scale sensitivities indexed by range selector.
var (
	accelLSBPerG   = [4]float64{16384, 8192, 4096, 2048}
	gyroLSBPerDegS = [4]float64{131, 65.5, 32.8, 16.4}
	accelRangeG    = [4]int{2, 4, 8, 16}
	gyroRangeDegS  = [4]int{250, 500, 1000, 2000}
)

// axisReader is the part of the MPU9250 driver a source needs.
type axisReader interface {
	GetAccelerationX() (int16, error)
	GetAccelerationY() (int16, error)
	GetAccelerationZ() (int16, error)
	GetRotationX() (int16, error)
	GetRotationY() (int16, error)
	GetRotationZ() (int16, error)
}

type imuSource struct {
	dev        axisReader
	est        *MotionEstimator
	accelScale float64 // g per LSB
	gyroScale  float64 // rad/s per LSB
	now        func() time.Time
}

// NewIMUSource initializes an MPU9250 over SPI and returns a Source that
// estimates device motion from its accelerometer and gyroscope.
func NewIMUSource(opts IMUOptions, log *zap.Logger) (Source, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.AccelRange > 3 || opts.GyroRange > 3 {
		return nil, fmt.Errorf("IMU: ranges must be 0-3, got accel %d gyro %d", opts.AccelRange, opts.GyroRange)
	}
	log = log.With(zap.String("spi", opts.SPIDevice), zap.String("cs", opts.CSPin))

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("IMU: periph host init: %w", err)
	}

	cs := gpioreg.ByName(opts.CSPin)
	if cs == nil {
		return nil, fmt.Errorf("IMU: CS pin %q not found", opts.CSPin)
	}

	tr, err := mpu9250.NewSpiTransport(opts.SPIDevice, cs)
	if err != nil {
		return nil, fmt.Errorf("IMU: SPI transport (%s): %w", opts.SPIDevice, err)
	}

	imu, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("IMU: device creation: %w", err)
	}

	if err := imu.Init(); err != nil {
		return nil, fmt.Errorf("IMU: initialization: %w", err)
	}

	// Self-test and calibration are best effort.
	if res, err := imu.SelfTest(); err != nil {
		log.Warn("IMU self-test failed", zap.Error(err))
	} else {
		log.Info("IMU self-test passed",
			zap.Float64("accel_dev_x", float64(res.AccelDeviation.X)),
			zap.Float64("accel_dev_y", float64(res.AccelDeviation.Y)),
			zap.Float64("accel_dev_z", float64(res.AccelDeviation.Z)),
			zap.Float64("gyro_dev_x", float64(res.GyroDeviation.X)),
			zap.Float64("gyro_dev_y", float64(res.GyroDeviation.Y)),
			zap.Float64("gyro_dev_z", float64(res.GyroDeviation.Z)),
		)
	}
	if err := imu.Calibrate(); err != nil {
		log.Warn("IMU calibration failed", zap.Error(err))
	} else {
		log.Info("IMU calibration complete")
	}

	// Ranges are applied after calibration.
	if err := imu.SetAccelRange(opts.AccelRange); err != nil {
		return nil, fmt.Errorf("IMU: set accel range: %w", err)
	}
	if err := imu.SetGyroRange(opts.GyroRange); err != nil {
		return nil, fmt.Errorf("IMU: set gyro range: %w", err)
	}
	log.Info("IMU ranges set",
		zap.Int("accel_g", accelRangeG[opts.AccelRange]),
		zap.Int("gyro_deg_s", gyroRangeDegS[opts.GyroRange]),
	)

	return newIMUSource(imu, opts, time.Now), nil
}

func newIMUSource(dev axisReader, opts IMUOptions, now func() time.Time) *imuSource {
	return &imuSource{
		dev:        dev,
		est:        NewMotionEstimator(opts.GravityAlpha),
		accelScale: 1 / accelLSBPerG[opts.AccelRange&3],
		gyroScale:  math.Pi / 180 / gyroLSBPerDegS[opts.GyroRange&3],
		now:        now,
	}
}

// Next reads accelerometer and gyroscope and updates the motion estimate.
func (s *imuSource) Next() (Reading, error) {
	ax, err := s.dev.GetAccelerationX()
	if err != nil {
		return Reading{}, fmt.Errorf("IMU accel X: %w", err)
	}
	ay, err := s.dev.GetAccelerationY()
	if err != nil {
		return Reading{}, fmt.Errorf("IMU accel Y: %w", err)
	}
	az, err := s.dev.GetAccelerationZ()
	if err != nil {
		return Reading{}, fmt.Errorf("IMU accel Z: %w", err)
	}

	gx, err := s.dev.GetRotationX()
	if err != nil {
		return Reading{}, fmt.Errorf("IMU gyro X: %w", err)
	}
	gy, err := s.dev.GetRotationY()
	if err != nil {
		return Reading{}, fmt.Errorf("IMU gyro Y: %w", err)
	}
	gz, err := s.dev.GetRotationZ()
	if err != nil {
		return Reading{}, fmt.Errorf("IMU gyro Z: %w", err)
	}

	accel := Vector{X: float64(ax), Y: float64(ay), Z: float64(az)}.Scale(s.accelScale)
	gyro := Vector{X: float64(gx), Y: float64(gy), Z: float64(gz)}.Scale(s.gyroScale)
	return s.est.Update(accel, gyro, s.now()), nil
}
