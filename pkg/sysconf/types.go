// Package sysconf probes and models the real-time scheduling configuration
// of the machine a trace was captured on: scheduling policies, per-thread
// CPU affinity, the global/partitioned/clustered multiprocessor layout, and
// the RT throttling knobs that bound how this configuration behaves.
package sysconf

// Cpu is a logical CPU index.
type Cpu = int

// Pid is a Linux thread/process id.
type Pid = int

// SchedPolicy mirrors the Linux SCHED_* scheduling classes relevant to
// real-time analysis.
type SchedPolicy int

const (
	SchedError SchedPolicy = iota
	SchedCFS
	SchedFIFO
	SchedRR
	SchedBatch
	SchedIdle
	SchedDeadline
)

func (p SchedPolicy) String() string {
	switch p {
	case SchedCFS:
		return "CFS"
	case SchedFIFO:
		return "FIFO"
	case SchedRR:
		return "RR"
	case SchedBatch:
		return "BATCH"
	case SchedIdle:
		return "IDLE"
	case SchedDeadline:
		return "DEADLINE"
	default:
		return "ERROR"
	}
}

// MultiprocType classifies how real-time threads are mapped onto CPUs.
type MultiprocType int

const (
	MultiprocError MultiprocType = iota
	MultiprocPartitioned
	MultiprocGlobal
	MultiprocClustered
	MultiprocClusteredNF
	MultiprocAPA
	MultiprocMixed
)

func (m MultiprocType) String() string {
	switch m {
	case MultiprocPartitioned:
		return "partitioned"
	case MultiprocGlobal:
		return "global"
	case MultiprocClustered:
		return "clustered"
	case MultiprocClusteredNF:
		return "clustered-nonfixed"
	case MultiprocAPA:
		return "APA"
	case MultiprocMixed:
		return "mixed"
	default:
		return "error"
	}
}

// ThreadInfo is the per-thread attributes relevant to the analysis: its
// scheduling policy, priority, CPU affinity mask, and whether it is one of
// the target (analyzed) threads or a kernel thread.
type ThreadInfo struct {
	Pid        Pid
	Priority   int
	Policy     SchedPolicy
	Affinity   []Cpu
	IsTarget   bool
	IsKThread  bool
}

// Cluster groups threads that share a common affinity mask under a
// clustered multiprocessor configuration. Probe's cluster builder fills in
// ID and CPUs only and leaves Threads nil.
type Cluster struct {
	ID      uint32
	CPUs    []Cpu
	Threads []ThreadInfo
}

// NewCluster builds a Cluster.
func NewCluster(id uint32, cpus []Cpu, threads []ThreadInfo) Cluster {
	return Cluster{ID: id, CPUs: cpus, Threads: threads}
}

// RuntimeLimit is a hard consecutive-runtime limit (RLIMIT_RTTIME): if the
// process runs that long without self-suspending, it is killed.
type RuntimeLimit struct {
	Pid        Pid
	MaxRuntime uint64
}

// SysConf is the full real-time configuration of the traced system.
type SysConf struct {
	Multiproc MultiprocType
	NCores    uint32

	RTPids         []Pid
	FifoPids       []Pid
	RRPids         []Pid
	DLPids         []Pid
	DLSlackRecPids []Pid
	TargetPids     []Pid
	KThreadPids    []Pid

	RTThreadsInfo         map[Pid]ThreadInfo
	RTThreadsInfoClusters []Cluster

	MaxRuntimes       bool
	ProcsMaxRuntimes  []RuntimeLimit

	RTPeriod          int32
	RTRuntime         int32
	RTRuntimeIsGlobal bool
	RTRuntimeIsGreedy bool
}

// Default returns the zero-value SysConf used before a probe has run, or in
// tests that don't care about system configuration.
func Default() SysConf {
	return SysConf{
		Multiproc:     MultiprocError,
		RTThreadsInfo: make(map[Pid]ThreadInfo),
	}
}
