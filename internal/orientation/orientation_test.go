package orientation

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputePoseFromAccelLevel(t *testing.T) {
	p := ComputePoseFromAccel(0, 0, 1)
	if !almostEqual(p.Roll, 0) || !almostEqual(p.Pitch, 0) || !almostEqual(p.Yaw, 0) {
		t.Errorf("level pose = %+v, want zeros", p)
	}
}

func TestComputePoseFromAccelTilt(t *testing.T) {
	// Gravity split evenly between Y and Z: 45° roll.
	p := ComputePoseFromAccel(0, math.Sqrt(0.5), math.Sqrt(0.5))
	if !almostEqual(p.Roll, 45) {
		t.Errorf("Roll = %v, want 45", p.Roll)
	}
	if !almostEqual(p.Pitch, 0) {
		t.Errorf("Pitch = %v, want 0", p.Pitch)
	}

	// Nose down: all gravity on X.
	p = ComputePoseFromAccel(1, 0, 0)
	if !almostEqual(p.Pitch, -90) {
		t.Errorf("Pitch = %v, want -90", p.Pitch)
	}
}

func TestIntegrateGyro(t *testing.T) {
	p := IntegrateGyro(Pose{Roll: 1, Pitch: 2, Yaw: 359}, 10, -10, 20, 0.1)
	if !almostEqual(p.Roll, 2) {
		t.Errorf("Roll = %v, want 2", p.Roll)
	}
	if !almostEqual(p.Pitch, 1) {
		t.Errorf("Pitch = %v, want 1", p.Pitch)
	}
	if !almostEqual(p.Yaw, 1) {
		t.Errorf("Yaw = %v, want 1 (wrapped)", p.Yaw)
	}
}

func TestComplementary(t *testing.T) {
	gyro := Pose{Roll: 10, Pitch: 20, Yaw: 30}
	accel := Pose{Roll: 0, Pitch: 0}

	p := Complementary(gyro, accel, 0.9)
	if !almostEqual(p.Roll, 9) || !almostEqual(p.Pitch, 18) {
		t.Errorf("blended pose = %+v, want Roll 9 Pitch 18", p)
	}
	if !almostEqual(p.Yaw, 30) {
		t.Errorf("Yaw = %v, want pass-through 30", p.Yaw)
	}
}

func TestBlendYawShortWay(t *testing.T) {
	// 350° toward 10°: the short way crosses 0.
	got := BlendYaw(350, 10, 0.5)
	if !almostEqual(got, 0) {
		t.Errorf("BlendYaw(350, 10, 0.5) = %v, want 0", got)
	}
}
