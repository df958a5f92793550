package brownout

import "github.com/GoSim-25-26J-441/brownout-core/pkg/models"

type fakeWorkload struct {
	id         string
	components []*models.OptionalComponent
	instant    float64
	instantAt  float64
	overrides  int
}

func (w *fakeWorkload) ID() string { return w.id }

func (w *fakeWorkload) OptionalComponents() []*models.OptionalComponent { return w.components }

func (w *fakeWorkload) SetInstantUtilization(value, at float64) {
	w.instant = value
	w.instantAt = at
	w.overrides++
}

type fakeVM struct {
	id           string
	mips         float64
	requested    float64
	hasTelemetry bool
	workloads    []Workload
}

func (v *fakeVM) ID() string    { return v.id }
func (v *fakeVM) MIPS() float64 { return v.mips }

func (v *fakeVM) LastRequestedMIPS() (float64, bool) { return v.requested, v.hasTelemetry }

func (v *fakeVM) ExecutingWorkloads() []Workload { return v.workloads }

type fakeHost struct {
	id          string
	previous    float64
	utilization float64
	vms         []VM
}

func (h *fakeHost) ID() string                   { return h.id }
func (h *fakeHost) PreviousUtilization() float64 { return h.previous }
func (h *fakeHost) Utilization() float64         { return h.utilization }
func (h *fakeHost) VMs() []VM                    { return h.vms }

func newFakeVM(id string, mips, requested float64, workloads ...*fakeWorkload) *fakeVM {
	vm := &fakeVM{id: id, mips: mips, requested: requested, hasTelemetry: true}
	for _, w := range workloads {
		vm.workloads = append(vm.workloads, w)
	}
	return vm
}

func newFakeHost(id string, previous float64, vms ...*fakeVM) *fakeHost {
	h := &fakeHost{id: id, previous: previous, utilization: previous}
	for _, vm := range vms {
		h.vms = append(h.vms, vm)
	}
	return h
}

type recordingObserver struct {
	signals     []Signal
	evaluations []*Evaluation
	intervals   []models.IntervalCount
}

func (o *recordingObserver) ObserveDimmer(_ float64, s Signal) { o.signals = append(o.signals, s) }

func (o *recordingObserver) ObserveEvaluation(ev *Evaluation) {
	o.evaluations = append(o.evaluations, ev)
}

func (o *recordingObserver) ObserveInterval(start float64, active int) {
	o.intervals = append(o.intervals, models.IntervalCount{IntervalStart: start, ActiveHosts: active})
}
