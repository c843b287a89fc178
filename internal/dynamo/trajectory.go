package dynamo

// Sample is one recorded point of a trajectory.
type Sample struct {
	Time  float64
	State State
}

// Trajectory is an append-only sequence of samples. Once returned by the
// solver it belongs to the caller.
type Trajectory struct {
	Samples []Sample
}

func NewTrajectory(capacity int) *Trajectory {
	return &Trajectory{Samples: make([]Sample, 0, capacity)}
}

// Append stores a copy of x.
func (tr *Trajectory) Append(t float64, x State) {
	tr.Samples = append(tr.Samples, Sample{Time: t, State: x.Clone()})
}

func (tr *Trajectory) Len() int { return len(tr.Samples) }

// Dim returns the number of components, or 0 for an empty trajectory.
func (tr *Trajectory) Dim() int {
	if len(tr.Samples) == 0 {
		return 0
	}
	return len(tr.Samples[0].State)
}

func (tr *Trajectory) Times() []float64 {
	times := make([]float64, len(tr.Samples))
	for i, s := range tr.Samples {
		times[i] = s.Time
	}
	return times
}

func (tr *Trajectory) States() []State {
	states := make([]State, len(tr.Samples))
	for i, s := range tr.Samples {
		states[i] = s.State
	}
	return states
}

// Final returns the last sample. ok is false for an empty trajectory.
func (tr *Trajectory) Final() (Sample, bool) {
	if len(tr.Samples) == 0 {
		return Sample{}, false
	}
	return tr.Samples[len(tr.Samples)-1], true
}

// Recorder decides which steps of an integration are kept.
type Recorder struct {
	every int
	traj  *Trajectory
}

// NewRecorder keeps the initial sample and every n-th step after it.
func NewRecorder(every int, capacity int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{every: every, traj: NewTrajectory(capacity)}
}

// Record stores x if step is due. Step 0 is always stored.
func (r *Recorder) Record(step int, t float64, x State) {
	if step%r.every == 0 {
		r.traj.Append(t, x)
	}
}

// Trajectory hands over the recorded samples; the recorder starts a new one.
func (r *Recorder) Trajectory() *Trajectory {
	tr := r.traj
	r.traj = NewTrajectory(0)
	return tr
}
