// Package orientation estimates attitude from inertial measurements. It is
// the concrete fold the shipped binaries hand to the fusion actor; the
// fusion core itself never depends on it.
package orientation

import (
	"math"
)

// Pose is the canonical attitude representation, in degrees.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// ComputePoseFromAccel computes roll and pitch from an acceleration vector
// using the tilt formulas:
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
//
// Yaw is unobservable from gravity alone and stays 0.
func ComputePoseFromAccel(ax, ay, az float64) Pose {
	rollRad := math.Atan2(ay, az)
	pitchRad := math.Atan2(-ax, math.Sqrt(ay*ay+az*az))

	return Pose{
		Roll:  rollRad * 180.0 / math.Pi,
		Pitch: pitchRad * 180.0 / math.Pi,
	}
}

// IntegrateGyro advances prev by the angular rates (°/s) over dt seconds.
func IntegrateGyro(prev Pose, gx, gy, gz, dt float64) Pose {
	return Pose{
		Roll:  prev.Roll + gx*dt,
		Pitch: prev.Pitch + gy*dt,
		Yaw:   wrapDeg(prev.Yaw + gz*dt),
	}
}

// Complementary blends the gyro-propagated pose with an accelerometer tilt
// reference: alpha is the gyro weight, 1-alpha the accel weight. Yaw has no
// accel reference and passes through.
func Complementary(gyro, accel Pose, alpha float64) Pose {
	return Pose{
		Roll:  alpha*gyro.Roll + (1-alpha)*accel.Roll,
		Pitch: alpha*gyro.Pitch + (1-alpha)*accel.Pitch,
		Yaw:   gyro.Yaw,
	}
}

// YawFromMag computes magnetic heading in degrees from the horizontal field
// components. Valid only near level attitude; good enough as a slow yaw
// reference.
func YawFromMag(mx, my float64) float64 {
	return wrapDeg(math.Atan2(-my, mx) * 180.0 / math.Pi)
}

// BlendYaw nudges the current yaw toward a reference heading, taking the
// short way around the circle. alpha is the weight kept on current.
func BlendYaw(current, reference, alpha float64) float64 {
	diff := wrapDeg(reference - current)
	if diff > 180 {
		diff -= 360
	}
	return wrapDeg(current + (1-alpha)*diff)
}

func wrapDeg(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}
