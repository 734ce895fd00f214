package vmg30

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ikalevatykh/vmg30/internal/config"
	"github.com/ikalevatykh/vmg30/internal/glove"
	"github.com/ikalevatykh/vmg30/internal/manager"
)

const BufLen = 1024

// Dial opens a glove device for the manager. Replaceable in tests.
type Dial func(opt config.GloveOpt) (manager.Device, error)

func defaultDial(opt config.GloveOpt) (manager.Device, error) {
	return glove.ConnectOptions(opt.Port, glove.Options{
		Baud:    opt.Baud,
		Timeout: time.Duration(opt.TimeoutS) * time.Second,
	})
}

type gloveManager struct {
	opt  *config.VMGServerOpt
	dial Dial

	device manager.Device
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	lock   sync.Mutex // lifecycle

	ringLock sync.RWMutex
	ring     []*glove.Sample
	counter  int64

	// Status flags are atomics, the pump flips faulted while the daemon
	// and the API poll without holding the lifecycle lock.
	running          atomic.Bool
	manuallyStopped  atomic.Bool
	faulted          atomic.Bool
	lastAccessSecond atomic.Int64
}

func listSerialPorts() []string {
	var ports []string
	switch runtime.GOOS {
	case "windows":
		for i := 1; i <= 256; i++ {
			ports = append(ports, fmt.Sprintf("COM%d", i))
		}
	case "linux":
		files, err := os.ReadDir("/dev")
		if err != nil {
			log.Errorln("Error reading directory:", err)
		}
		for _, file := range files {
			if strings.Contains(file.Name(), "tty") && strings.Contains(file.Name(), "USB") {
				ports = append(ports, "/dev/"+file.Name())
			}
		}
	case "darwin":
		files, err := os.ReadDir("/dev")
		if err != nil {
			log.Fatal(err)
		}
		for _, file := range files {
			if file.IsDir() {
				continue
			}
			name := file.Name()
			if strings.HasPrefix(name, "tty.") {
				ports = append(ports, "/dev/"+name)
			}
		}
	default:
		log.Fatalf("unsupported platform: %s", runtime.GOOS)
	}
	return ports
}

// ProbeDev scans serial ports for a responding glove. A port is valid
// when the connect handshake succeeds on it.
func (m *gloveManager) ProbeDev() ([]string, error) {
	var validPorts []string
	for _, portName := range listSerialPorts() {
		opt := m.opt.Glove
		opt.Port = portName
		dev, err := m.dial(opt)
		if err != nil {
			continue
		}
		fmt.Print(".")
		_ = dev.Disconnect()
		validPorts = append(validPorts, portName)
	}

	if len(validPorts) == 0 {
		return nil, errors.New("no valid ports found")
	}
	return validPorts, nil
}

const autoSleepDurationSecond = 60

func (m *gloveManager) TrySleep() error {
	var err error = nil
	if m.Running() && (time.Now().Unix()-m.lastAccessSecond.Load() > autoSleepDurationSecond) {
		log.Infof("timeout after %v seconds, enter sleep mode", autoSleepDurationSecond)
		m.lastAccessSecond.Store(math.MaxInt64)
		err = m.Stop()
		if err != nil {
			log.Errorln(err)
		}
	}
	return err
}

func (m *gloveManager) Running() bool {
	return m.running.Load() && !m.faulted.Load()
}

func (m *gloveManager) Faulted() bool {
	return m.faulted.Load()
}

func (m *gloveManager) ManuallyStopped() bool {
	return m.manuallyStopped.Load()
}

// pump reads the sample stream into the ring buffer. Damaged packets are
// dropped, the codec resyncs on the next frame; any other read error
// faults the manager and the daemon reconnects.
func (m *gloveManager) pump() {
	defer m.wg.Done()

	diagLastCheck := time.Now().UnixMilli()
	diagLastCounter := m.counter

	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		sample, err := m.device.NextSample()
		if err != nil {
			select {
			case <-m.ctx.Done():
				return
			default:
			}
			if glove.IsPacketError(err) {
				log.Debugf("glove sample dropped: %v", err)
				continue
			}
			log.Warnf("glove read error: %v", err)
			m.faulted.Store(true)
			return
		}

		m.ringLock.Lock()
		m.ring[m.counter%BufLen] = sample
		m.counter++
		m.ringLock.Unlock()

		diagDuration := float64(time.Now().UnixMilli()-diagLastCheck) / 1000
		if diagDuration >= 10 {
			log.Debugf("pump fps: %3.1f", float64(m.counter-diagLastCounter)/diagDuration)
			diagLastCounter = m.counter
			diagLastCheck = time.Now().UnixMilli()
		}
	}
}

// Start connects the glove and starts the sample pump
func (m *gloveManager) Start() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.lastAccessSecond.Store(time.Now().Unix())

	if m.device == nil {
		dev, err := m.dial(m.opt.Glove)
		if err != nil {
			return err
		}
		if err := dev.StartSampling(m.opt.Glove.Raw); err != nil {
			_ = dev.Disconnect()
			return err
		}
		m.device = dev
		m.faulted.Store(false)
		m.ctx, m.cancel = context.WithCancel(context.Background())
		m.wg.Add(1)
		go m.pump()
		m.running.Store(true)
		log.Infof("manager started on %s", m.opt.Glove.Port)
	}
	m.manuallyStopped.Store(false)
	return nil
}

// Stop stops the pump and disconnects the glove
func (m *gloveManager) Stop() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.lastAccessSecond.Store(time.Now().Unix())

	if m.device == nil {
		return nil
	}
	m.cancel()
	m.wg.Wait()
	m.running.Store(false)

	if !m.faulted.Load() {
		if err := m.device.StopSampling(); err != nil {
			log.Warnln(err)
		}
		// A fault stop is not a user stop, the daemon may reconnect.
		m.manuallyStopped.Store(true)
	}
	if err := m.device.Disconnect(); err != nil {
		log.Warnln(err)
	}
	m.device = nil
	m.faulted.Store(false)

	m.ringLock.Lock()
	m.counter = 0
	m.ring = make([]*glove.Sample, BufLen)
	m.ringLock.Unlock()

	log.Infof("manager stopped")
	return nil
}

// Restart restarts the glove connection
func (m *gloveManager) Restart() error {
	if err := m.Stop(); err != nil {
		return err
	}
	return m.Start()
}

// Identity returns the connected glove identity.
func (m *gloveManager) Identity() (glove.Identity, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.device == nil {
		return glove.Identity{}, errors.New("glove is not connected")
	}
	return m.device.Identity(), nil
}

// SetVibroFeedback forwards vibro levels to the glove. The command is a
// write-only frame, it does not interfere with the pump reading samples.
func (m *gloveManager) SetVibroFeedback(levels [5]float64) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.lastAccessSecond.Store(time.Now().Unix())
	if m.device == nil {
		return errors.New("glove is not connected")
	}
	return m.device.SetVibroFeedback(levels)
}

// Read returns buffered samples. A negative cursor asks for the latest
// sample only, otherwise all samples after the cursor are returned along
// with the new cursor value.
func (m *gloveManager) Read(cursor int64) (int64, []*glove.Sample, error) {
	m.ringLock.RLock()
	defer m.ringLock.RUnlock()
	m.lastAccessSecond.Store(time.Now().Unix())

	if cursor < 0 {
		cursor = m.counter - 1
		if cursor < 0 {
			return cursor, nil, errors.New("not ready")
		}
		return cursor, []*glove.Sample{m.ring[cursor%BufLen]}, nil
	}

	if cursor+1 >= m.counter {
		return cursor, nil, errors.New("no new data")
	}
	stop := m.counter
	if stop-cursor >= BufLen {
		cursor = m.counter - 1
	}
	res := make([]*glove.Sample, 0, stop-cursor)
	for ; cursor < stop; cursor++ {
		res = append(res, m.ring[cursor%BufLen])
	}
	return cursor, res, nil
}

// NewManager creates a manager for the configured glove.
func NewManager(opt *config.VMGServerOpt) manager.Manager {
	return newManager(opt, defaultDial)
}

func newManager(opt *config.VMGServerOpt, dial Dial) *gloveManager {
	m := &gloveManager{
		opt:  opt,
		dial: dial,
		ring: make([]*glove.Sample, BufLen),
	}
	m.lastAccessSecond.Store(time.Now().Unix())
	return m
}

// Daemon supervises the manager: restarts it after faults and lets it
// sleep when unused.
func Daemon(m manager.Manager) {
	for {
		if m.Faulted() {
			log.Infoln("status is faulted, stopping")
			if err := m.Stop(); err != nil {
				log.Errorln(err)
			}
		}
		if !m.Running() && !m.ManuallyStopped() {
			if err := m.Start(); err != nil {
				log.Errorln(err)
				time.Sleep(time.Second * 1)
				continue
			}
		}
		time.Sleep(time.Second * 1)
		_ = m.TrySleep()
	}
}
