package app

import (
	"math"
	"testing"

	"github.com/relabs-tech/flight_computer/internal/fusion"
	"github.com/relabs-tech/flight_computer/internal/imu"
	"github.com/relabs-tech/flight_computer/internal/orientation"
)

func TestPoseFoldGyroIntegration(t *testing.T) {
	fold := newPoseFold(0.1)

	pose := orientation.Pose{}
	// 10°/s roll rate over 10 steps of 0.1s = 10° of roll.
	for i := 0; i < 10; i++ {
		pose = fold(pose, fusion.GyroInput(imu.ProcessedGyro{X: 10}))
	}

	if math.Abs(pose.Roll-10.0) > 1e-9 {
		t.Errorf("Roll = %f, want 10.0", pose.Roll)
	}
	if pose.Pitch != 0 || pose.Yaw != 0 {
		t.Errorf("Pitch/Yaw = %f/%f, want 0/0", pose.Pitch, pose.Yaw)
	}
}

func TestPoseFoldAccelPullsTowardTilt(t *testing.T) {
	fold := newPoseFold(0.1)

	// Start with a drifted roll; a level accel reading must pull it back.
	pose := orientation.Pose{Roll: 10}
	pose = fold(pose, fusion.AccelInput(imu.ProcessedAccel{Z: 1}))

	want := gyroWeight * 10.0
	if math.Abs(pose.Roll-want) > 1e-9 {
		t.Errorf("Roll = %f, want %f", pose.Roll, want)
	}
}

func TestPoseFoldMagAdjustsYawOnly(t *testing.T) {
	fold := newPoseFold(0.1)

	pose := orientation.Pose{Roll: 5, Pitch: -3}
	// Field pointing along +X means heading 0; yaw should move toward it.
	pose = fold(pose, fusion.MagInput(imu.ProcessedMag{X: 45}))

	if pose.Roll != 5 || pose.Pitch != -3 {
		t.Errorf("Roll/Pitch changed: %f/%f", pose.Roll, pose.Pitch)
	}
	if pose.Yaw != 0 {
		t.Errorf("Yaw = %f, want 0", pose.Yaw)
	}
}

func TestPoseFoldIgnoresUnknownKind(t *testing.T) {
	fold := newPoseFold(0.1)

	pose := orientation.Pose{Roll: 1, Pitch: 2, Yaw: 3}
	got := fold(pose, fusion.SensorInput{Kind: fusion.Kind(99)})

	if got != pose {
		t.Errorf("pose changed on unknown input: %+v", got)
	}
}
