// Package monitoring turns a running simulation into a web server that can
// be used to inspect and control it.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/stateneuron/monitoring/web"
	"github.com/sarchlab/stateneuron/sim"
)

// A Component can be listed and inspected by the monitor.
type Component interface {
	Name() string
}

// A recordableComponent exposes named scalar quantities.
type recordableComponent interface {
	RecordableNames() []string
	ReadRecordable(name string) (float64, error)
}

// Monitor can turn a simulation into a server and allows external monitoring
// controlling of the simulation.
type Monitor struct {
	engine     sim.Engine
	components []Component
	portNumber int

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterEngine registers the engine that is used in the simulation.
func (m *Monitor) RegisterEngine(e sim.Engine) {
	m.engine = e
}

// RegisterComponent registers a component to be monitored.
func (m *Monitor) RegisterComponent(c Component) {
	m.components = append(m.components, c)
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        sim.GetIDGenerator().Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Handler returns the HTTP handler serving the monitor API and web page.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/run", m.run)
	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/recordables/{name}", m.listRecordables)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts serving in the background and returns the URL of the
// web page.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	handler := m.Handler()
	go func() {
		err := http.Serve(listener, handler)
		dieOnErr(err)
	}()

	return url
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	now := m.engine.CurrentTime()
	fmt.Fprintf(w, "{\"now\":%d}", now)
}

func (m *Monitor) run(_ http.ResponseWriter, _ *http.Request) {
	go func() {
		err := m.engine.Run()
		if err != nil {
			log.Printf("monitor: run failed: %v", err)
		}
	}()
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, len(m.components))
	for i, c := range m.components {
		names[i] = c.Name()
	}

	writeJSON(w, names)
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	component := m.findComponentOr404(w, name)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	component := m.findComponentOr404(w, req.CompName)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) listRecordables(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	component := m.findComponentOr404(w, name)
	if component == nil {
		return
	}

	rc, ok := component.(recordableComponent)
	if !ok {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	values := make(map[string]float64)
	for _, n := range rc.RecordableNames() {
		v, err := rc.ReadRecordable(n)
		dieOnErr(err)

		values[n] = v
	}

	writeJSON(w, values)
}

func (m *Monitor) findComponentOr404(
	w http.ResponseWriter,
	name string,
) Component {
	for _, c := range m.components {
		if c.Name() == name {
			return c
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Component not found"))
	dieOnErr(err)

	return nil
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]ProgressBarStatus, len(m.progressBars))
	for i, b := range m.progressBars {
		bars[i] = b.Status()
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	b, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(b)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
