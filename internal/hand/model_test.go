package hand

import (
	"math"
	"testing"

	"github.com/ikalevatykh/vmg30/internal/glove"
)

func restSample() *glove.Sample {
	return &glove.Sample{
		WristQuat: &[4]float64{0, 0, 0, 1},
		HandQuat:  &[4]float64{0, 0, 0, 1},
	}
}

func TestAnglesRestPose(t *testing.T) {
	m := NewModel()
	angles, err := m.Angles(restSample())
	if err != nil {
		t.Fatalf("Angles() error: %v", err)
	}
	if len(angles) != len(m.Links()) {
		t.Fatalf("Angles() returned %d joints, want %d", len(angles), len(m.Links()))
	}
	for name, a := range angles {
		for i := 0; i < 3; i++ {
			if math.Abs(a[i]) > 1e-9 {
				t.Errorf("rest pose angle %s[%d] = %v, want 0", name, i, a[i])
			}
		}
	}
}

func TestAnglesSensors(t *testing.T) {
	m := NewModel()
	sample := restSample()
	sample.PIPJoints[1] = 0.5
	sample.DIPJoints[2] = 0.25
	sample.PalmArch = 0.2
	sample.ThumbCrossOver = 0.1

	angles, err := m.Angles(sample)
	if err != nil {
		t.Fatalf("Angles() error: %v", err)
	}
	if got := angles["index1"][1]; math.Abs(got-35.0) > 1e-9 {
		t.Errorf("index1 pitch = %v, want 35.0", got)
	}
	if got := angles["middle2"][1]; math.Abs(got-25.0) > 1e-9 {
		t.Errorf("middle2 pitch = %v, want 25.0", got)
	}
	if got := angles["thumb0"][1]; math.Abs(got-17.25) > 1e-9 {
		t.Errorf("thumb0 pitch = %v, want 17.25", got)
	}
}

func TestAnglesWristYaw(t *testing.T) {
	m := NewModel()
	sample := restSample()
	// Wrist rotated 90 degrees around z.
	s, c := math.Sin(math.Pi/4), math.Cos(math.Pi/4)
	sample.WristQuat = &[4]float64{0, 0, s, c}

	angles, err := m.Angles(sample)
	if err != nil {
		t.Fatalf("Angles() error: %v", err)
	}
	if got := angles["wrist"][2]; math.Abs(got-90.0) > 1e-6 {
		t.Errorf("wrist yaw = %v, want 90.0", got)
	}
}

func TestAnglesRequiresQuaternions(t *testing.T) {
	m := NewModel()
	if _, err := m.Angles(&glove.Sample{WristIMU: &glove.IMUSample{}, HandIMU: &glove.IMUSample{}}); err == nil {
		t.Error("Angles() accepted a raw mode sample")
	}
}

func TestPointsRestPose(t *testing.T) {
	m := NewModel()
	points, err := m.Points(restSample())
	if err != nil {
		t.Fatalf("Points() error: %v", err)
	}

	near := func(a, b Vec3) bool {
		return math.Abs(a[0]-b[0]) < 1e-9 && math.Abs(a[1]-b[1]) < 1e-9 && math.Abs(a[2]-b[2]) < 1e-9
	}
	if got := points["wrist"]; !near(got, Vec3{0.060, 0, 0}) {
		t.Errorf("wrist point = %v, want {0.06 0 0}", got)
	}
	if got := points["hand"]; !near(got, Vec3{0.090, 0, 0}) {
		t.Errorf("hand point = %v, want {0.09 0 0}", got)
	}
	// The middle finger chain is straight along x in the rest pose.
	if got := points["middle3"]; !near(got, Vec3{0.267, 0, 0}) {
		t.Errorf("middle3 point = %v, want {0.267 0 0}", got)
	}
	// Index and little fingers splay to opposite sides of the palm.
	if points["index3"][1] <= 0 {
		t.Errorf("index3 y = %v, want > 0", points["index3"][1])
	}
	if points["little3"][1] >= 0 {
		t.Errorf("little3 y = %v, want < 0", points["little3"][1])
	}

	for _, tip := range m.TipNames() {
		if _, ok := points[tip]; !ok {
			t.Errorf("tip %q missing from points", tip)
		}
	}
}
