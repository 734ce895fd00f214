package manager

import "github.com/ikalevatykh/vmg30/internal/glove"

// Device is the glove session surface the manager drives. *glove.Session
// satisfies it.
type Device interface {
	Identity() glove.Identity
	StartSampling(raw bool) error
	StopSampling() error
	NextSample() (*glove.Sample, error)
	SetVibroFeedback(levels [5]float64) error
	Disconnect() error
}

// Manager owns a glove connection and buffers its sample stream for
// concurrent consumers. The glove session itself is single threaded, the
// manager is the serialization layer around it.
type Manager interface {
	Start() error
	Stop() error
	Restart() error
	Read(cursor int64) (int64, []*glove.Sample, error)
	Identity() (glove.Identity, error)
	SetVibroFeedback(levels [5]float64) error
	Running() bool
	ManuallyStopped() bool
	Faulted() bool
	ProbeDev() ([]string, error)
	TrySleep() error
}
