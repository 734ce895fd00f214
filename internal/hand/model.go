// Package hand contains a kinematic model of a hand compatible with the
// VMG30 glove. It converts decoded glove samples into joint angles, link
// frames and link positions.
package hand

import (
	"errors"
	"math"

	"github.com/ikalevatykh/vmg30/internal/glove"
)

// Vec3 is a 3-vector of x, y, z components.
type Vec3 [3]float64

// Mat4 is a 4x4 homogeneous transformation matrix.
type Mat4 [4][4]float64

// Link describes one bone of the hand skeleton.
type Link struct {
	Name   string
	Parent string
	Euler  Vec3 // rest orientation relative to the parent, degrees
	Length float64
}

// Model is a kinematic hand model. Construct one per call site with
// NewModel, the model itself is stateless and read-only after creation.
type Model struct {
	links []Link
}

// NewModel builds the default 22-link skeleton.
func NewModel() *Model {
	return &Model{links: []Link{
		{"wrist", "root", Vec3{0, 0, 0}, 0.060},
		{"hand", "wrist", Vec3{0, 0, 0}, 0.030},
		{"thumb0", "hand", Vec3{0, 5, 115}, 0.045},
		{"thumb1", "thumb0", Vec3{0, 0, -70}, 0.060},
		{"thumb2", "thumb1", Vec3{0, 0, 0}, 0.028},
		{"thumb3", "thumb2", Vec3{0, 0, 0}, 0.025},
		{"index0", "hand", Vec3{0, 0, 15}, 0.090},
		{"index1", "index0", Vec3{0, 0, 5}, 0.040},
		{"index2", "index1", Vec3{0, 0, 0}, 0.028},
		{"index3", "index2", Vec3{0, 0, 0}, 0.020},
		{"middle0", "hand", Vec3{0, 0, 0}, 0.085},
		{"middle1", "middle0", Vec3{0, 0, 0}, 0.035},
		{"middle2", "middle1", Vec3{0, 0, 0}, 0.032},
		{"middle3", "middle2", Vec3{0, 0, 0}, 0.025},
		{"ring0", "hand", Vec3{0, 0, -15}, 0.085},
		{"ring1", "ring0", Vec3{0, 0, -5}, 0.030},
		{"ring2", "ring1", Vec3{0, 0, 0}, 0.028},
		{"ring3", "ring2", Vec3{0, 0, 0}, 0.025},
		{"little0", "hand", Vec3{0, 0, -35}, 0.075},
		{"little1", "little0", Vec3{0, 0, -5}, 0.030},
		{"little2", "little1", Vec3{0, 0, 0}, 0.025},
		{"little3", "little2", Vec3{0, 0, 0}, 0.017},
	}}
}

// Links returns the links of the skeleton, root first.
func (m *Model) Links() []Link { return m.links }

// TipNames returns the names of the finger tip links, thumb to little.
func (m *Model) TipNames() []string {
	return []string{"thumb3", "index3", "middle3", "ring3", "little3"}
}

// Angles converts sensor data to euler angles in joints, degrees by link
// name. The sample must carry orientation quaternions.
func (m *Model) Angles(sample *glove.Sample) (map[string]Vec3, error) {
	if sample.WristQuat == nil || sample.HandQuat == nil {
		return nil, errors.New("hand: sample carries no orientation data")
	}
	wRoll, wPitch, wYaw := quatToEuler(*sample.WristQuat)
	_, hPitch, _ := quatToEuler(*sample.HandQuat)

	pip, dip := sample.PIPJoints, sample.DIPJoints
	abd := sample.Abductions

	return map[string]Vec3{
		"wrist":   {-wRoll, -wPitch, wYaw},
		"hand":    {0, wPitch - hPitch, 0},
		"thumb0":  {0, 57.5 * (sample.PalmArch + sample.ThumbCrossOver), 0},
		"thumb1":  {0, 20.0 * pip[0], -25.0 * abd[0]},
		"thumb2":  {0, 30.0 * pip[0], 0},
		"thumb3":  {0, 85.0 * dip[0], 0},
		"index0":  {0, 0, 0},
		"index1":  {0, 70.0 * pip[1], -25.0 * abd[1]},
		"index2":  {0, 100.0 * dip[1], 0},
		"index3":  {0, 30.0 * dip[1], 0},
		"middle0": {0, 0, 0},
		"middle1": {0, 70.0 * pip[2], 0},
		"middle2": {0, 100.0 * dip[2], 0},
		"middle3": {0, 30.0 * dip[2], 0},
		"ring0":   {0, 0, 0},
		"ring1":   {0, 70.0 * pip[3], 25.0 * abd[2]},
		"ring2":   {0, 100.0 * dip[3], 0},
		"ring3":   {0, 30.0 * dip[3], 0},
		"little0": {0, 0, 0},
		"little1": {0, 70.0 * pip[4], 25.0 * abd[3]},
		"little2": {0, 100.0 * dip[4], 0},
		"little3": {0, 30.0 * dip[4], 0},
	}, nil
}

// Frames converts sensor data to link frame transformations (4x4) by link
// name, expressed in the root frame.
func (m *Model) Frames(sample *glove.Sample) (map[string]Mat4, error) {
	joints, err := m.Angles(sample)
	if err != nil {
		return nil, err
	}
	frames := map[string]Mat4{"root": identity()}
	for _, link := range m.links {
		angles := joints[link.Name]
		rotate := eulerToMat(
			rad(link.Euler[0]+angles[0]),
			rad(link.Euler[1]+angles[1]),
			rad(link.Euler[2]+angles[2]))
		// The link frame sits at the far end of the bone.
		local := compose(rotate, rotate.apply(Vec3{link.Length, 0, 0}))
		frames[link.Name] = mul(frames[link.Parent], local)
	}
	return frames, nil
}

// Points converts sensor data to link positions by link name.
func (m *Model) Points(sample *glove.Sample) (map[string]Vec3, error) {
	frames, err := m.Frames(sample)
	if err != nil {
		return nil, err
	}
	points := make(map[string]Vec3, len(frames))
	for name, frame := range frames {
		points[name] = Vec3{frame[0][3], frame[1][3], frame[2][3]}
	}
	return points, nil
}

type mat3 [3][3]float64

func (m mat3) apply(v Vec3) Vec3 {
	var out Vec3
	for i := 0; i < 3; i++ {
		out[i] = m[i][0]*v[0] + m[i][1]*v[1] + m[i][2]*v[2]
	}
	return out
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }

// quatToEuler converts an x,y,z,w quaternion to static xyz euler angles
// (roll, pitch, yaw) in degrees.
func quatToEuler(q [4]float64) (roll, pitch, yaw float64) {
	x, y, z, w := q[0], q[1], q[2], q[3]
	roll = math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))
	sinp := 2 * (w*y - z*x)
	if sinp > 1 {
		sinp = 1
	} else if sinp < -1 {
		sinp = -1
	}
	pitch = math.Asin(sinp)
	yaw = math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))
	return roll * 180 / math.Pi, pitch * 180 / math.Pi, yaw * 180 / math.Pi
}

// eulerToMat builds a rotation from static xyz euler angles in radians:
// R = Rz(ak) Ry(aj) Rx(ai).
func eulerToMat(ai, aj, ak float64) mat3 {
	si, ci := math.Sin(ai), math.Cos(ai)
	sj, cj := math.Sin(aj), math.Cos(aj)
	sk, ck := math.Sin(ak), math.Cos(ak)
	return mat3{
		{cj * ck, si*sj*ck - ci*sk, ci*sj*ck + si*sk},
		{cj * sk, si*sj*sk + ci*ck, ci*sj*sk - si*ck},
		{-sj, si * cj, ci * cj},
	}
}

func identity() Mat4 {
	var m Mat4
	for i := 0; i < 4; i++ {
		m[i][i] = 1
	}
	return m
}

func compose(r mat3, t Vec3) Mat4 {
	var m Mat4
	for i := 0; i < 3; i++ {
		copy(m[i][:3], r[i][:])
		m[i][3] = t[i]
	}
	m[3][3] = 1
	return m
}

func mul(a, b Mat4) Mat4 {
	var m Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 4; k++ {
				m[i][j] += a[i][k] * b[k][j]
			}
		}
	}
	return m
}
