package preset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/coda/domain"
)

// FloatControl is the parameter surface the handler works with. The param
// package's float Parameter satisfies it.
type FloatControl interface {
	Address() string
	Get() float64
	Set(v float64)
}

// Options configures a preset Handler.
type Options struct {
	// Dir is the directory holding the preset files. Created if missing.
	Dir string

	// MorphTime is the recall interpolation time in seconds. Zero or
	// negative means recalled values are applied immediately.
	MorphTime float64
}

// NewOptions returns default handler options for the given directory.
func NewOptions(dir string) Options {
	return Options{Dir: dir, MorphTime: 0}
}

// presetFile is the on-disk TOML layout.
type presetFile struct {
	Name   string             `toml:"name"`
	Values map[string]float64 `toml:"values"`
}

// Handler stores and recalls parameter snapshots. It is a synchronous
// domain; its tick advances any in-flight morph by the owning domain's time
// delta.
type Handler struct {
	domain.SynchronousBase

	dir string

	mu          sync.Mutex
	morphTime   float64
	params      []FloatControl
	currentName string
	morphLeft   float64
	morphTotal  float64
	starts      map[string]float64
	targets     map[string]float64

	watcher   *fsnotify.Watcher
	watchDone chan struct{}
}

// NewHandler creates a handler over opts.Dir, creating the directory when it
// does not exist.
func NewHandler(opts Options) (*Handler, error) {
	if opts.Dir == "" {
		opts.Dir = "presets"
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create preset directory: %w", err)
	}
	h := &Handler{
		dir:       opts.Dir,
		morphTime: opts.MorphTime,
	}
	h.Bind(h)
	logrus.WithFields(logrus.Fields{
		"function":   "preset.NewHandler",
		"dir":        opts.Dir,
		"morph_time": opts.MorphTime,
	}).Info("preset handler created")
	return h, nil
}

// Register adds parameters to the snapshot set. Already-registered addresses
// are not deduplicated; register each parameter once.
func (h *Handler) Register(params ...FloatControl) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.params = append(h.params, params...)
}

// SetMorphTime changes the recall interpolation time in seconds.
func (h *Handler) SetMorphTime(seconds float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.morphTime = seconds
}

// Dir returns the preset directory.
func (h *Handler) Dir() string { return h.dir }

// CurrentPreset returns the name of the most recently stored or recalled
// preset, or "".
func (h *Handler) CurrentPreset() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentName
}

func (h *Handler) fileFor(name string) string {
	return filepath.Join(h.dir, name+".toml")
}

// Store writes the current values of every registered parameter to
// <dir>/<name>.toml.
func (h *Handler) Store(name string) error {
	h.mu.Lock()
	if len(h.params) == 0 {
		h.mu.Unlock()
		return ErrNoParameters
	}
	file := presetFile{Name: name, Values: make(map[string]float64, len(h.params))}
	for _, p := range h.params {
		file.Values[p.Address()] = p.Get()
	}
	h.currentName = name
	h.mu.Unlock()

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to encode preset %q: %w", name, err)
	}
	if err := os.WriteFile(h.fileFor(name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write preset %q: %w", name, err)
	}
	logrus.WithFields(logrus.Fields{
		"function": "Handler.Store",
		"preset":   name,
		"values":   len(file.Values),
	}).Info("preset stored")
	return nil
}

// Recall loads <name>.toml and applies it to the registered parameters,
// jumping immediately when MorphTime is zero and interpolating over
// MorphTime seconds otherwise. Addresses in the file with no matching
// registered parameter are skipped with a warning.
func (h *Handler) Recall(name string) error {
	data, err := os.ReadFile(h.fileFor(name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrPresetNotFound, name)
		}
		return fmt.Errorf("failed to read preset %q: %w", name, err)
	}
	var file presetFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to decode preset %q: %w", name, err)
	}

	h.mu.Lock()
	h.currentName = name
	known := make(map[string]FloatControl, len(h.params))
	for _, p := range h.params {
		known[p.Address()] = p
	}
	for address := range file.Values {
		if _, ok := known[address]; !ok {
			logrus.WithFields(logrus.Fields{
				"function": "Handler.Recall",
				"preset":   name,
				"address":  address,
			}).Warn("preset value has no registered parameter")
		}
	}
	if h.morphTime <= 0 {
		h.morphLeft = 0
		h.targets = nil
		h.starts = nil
		h.mu.Unlock()
		for address, value := range file.Values {
			if p, ok := known[address]; ok {
				p.Set(value)
			}
		}
		return nil
	}
	h.starts = make(map[string]float64, len(file.Values))
	h.targets = make(map[string]float64, len(file.Values))
	for address, value := range file.Values {
		p, ok := known[address]
		if !ok {
			continue
		}
		h.starts[address] = p.Get()
		h.targets[address] = value
	}
	h.morphTotal = h.morphTime
	h.morphLeft = h.morphTime
	morphTime := h.morphTime
	h.mu.Unlock()
	logrus.WithFields(logrus.Fields{
		"function":   "Handler.Recall",
		"preset":     name,
		"morph_time": morphTime,
	}).Debug("preset morph started")
	return nil
}

// Tick advances an in-flight morph by the handler's current time delta.
func (h *Handler) Tick() bool {
	start := time.Now()
	ok := h.TickSubdomains(true)
	h.StepMorph(h.TimeDelta())
	if !h.TickSubdomains(false) {
		ok = false
	}
	h.RecordTick(time.Since(start), ok)
	return ok
}

// StepMorph advances the interpolation by dt seconds. Exposed for callers
// that drive morphing from their own clock instead of a domain tree.
func (h *Handler) StepMorph(dt float64) {
	h.mu.Lock()
	if h.morphLeft <= 0 || h.morphTotal <= 0 {
		h.mu.Unlock()
		return
	}
	h.morphLeft -= dt
	progress := 1 - h.morphLeft/h.morphTotal
	if progress > 1 {
		progress = 1
	}
	final := h.morphLeft <= 0
	known := make(map[string]FloatControl, len(h.params))
	for _, p := range h.params {
		known[p.Address()] = p
	}
	type step struct {
		control FloatControl
		value   float64
	}
	steps := make([]step, 0, len(h.targets))
	for address, target := range h.targets {
		p, ok := known[address]
		if !ok {
			continue
		}
		value := target
		if !final {
			start := h.starts[address]
			value = start + (target-start)*progress
		}
		steps = append(steps, step{control: p, value: value})
	}
	h.mu.Unlock()
	for _, s := range steps {
		s.control.Set(s.value)
	}
}

// Morphing reports whether a recall interpolation is still in flight.
func (h *Handler) Morphing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.morphLeft > 0
}

// Presets lists the preset names available in the directory, sorted.
func (h *Handler) Presets() ([]string, error) {
	entries, err := os.ReadDir(h.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".toml"))
	}
	sort.Strings(names)
	return names, nil
}

// Watch starts re-applying the current preset whenever its file changes on
// disk. Stop watching with Close.
func (h *Handler) Watch() error {
	h.mu.Lock()
	if h.watcher != nil {
		h.mu.Unlock()
		return ErrWatcherActive
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		h.mu.Unlock()
		return fmt.Errorf("failed to create preset watcher: %w", err)
	}
	if err := watcher.Add(h.dir); err != nil {
		watcher.Close()
		h.mu.Unlock()
		return fmt.Errorf("failed to watch preset directory: %w", err)
	}
	h.watcher = watcher
	h.watchDone = make(chan struct{})
	done := h.watchDone
	h.mu.Unlock()

	go h.watchLoop(watcher, done)
	logrus.WithFields(logrus.Fields{
		"function": "Handler.Watch",
		"dir":      h.dir,
	}).Info("preset hot reload enabled")
	return nil
}

func (h *Handler) watchLoop(watcher *fsnotify.Watcher, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			current := h.CurrentPreset()
			if current == "" || filepath.Base(event.Name) != current+".toml" {
				continue
			}
			if err := h.Recall(current); err != nil {
				logrus.WithFields(logrus.Fields{
					"function": "Handler.watchLoop",
					"preset":   current,
					"error":    err.Error(),
				}).Warn("failed to reload edited preset")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logrus.WithFields(logrus.Fields{
				"function": "Handler.watchLoop",
				"error":    err.Error(),
			}).Warn("preset watcher error")
		}
	}
}

// Close stops the watcher if one is running. The handler remains usable for
// store and recall.
func (h *Handler) Close() error {
	h.mu.Lock()
	watcher := h.watcher
	done := h.watchDone
	h.watcher = nil
	h.watchDone = nil
	h.mu.Unlock()
	if watcher == nil {
		return nil
	}
	close(done)
	return watcher.Close()
}
