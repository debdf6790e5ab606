//go:build linux

package sysconf

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Probe reads the live scheduling configuration of the machine it runs on:
// every FIFO/RR/DEADLINE process listed directly under /proc (the per-thread
// /proc/<pid>/task entries are not scanned), their priorities and CPU
// affinity masks, and the classification of how they are laid out across
// cores.
func Probe() (SysConf, error) {
	conf := Default()
	conf.NCores = uint32(ncpu())

	pids, err := listProcessIDs()
	if err != nil {
		return conf, err
	}

	for _, pid := range pids {
		info, ok := probeThread(pid)
		if !ok {
			continue
		}
		conf.RTThreadsInfo[pid] = info

		switch info.Policy {
		case SchedFIFO:
			conf.FifoPids = append(conf.FifoPids, pid)
			conf.RTPids = append(conf.RTPids, pid)
		case SchedRR:
			conf.RRPids = append(conf.RRPids, pid)
			conf.RTPids = append(conf.RTPids, pid)
		case SchedDeadline:
			conf.DLPids = append(conf.DLPids, pid)
		}
		if info.IsKThread {
			conf.KThreadPids = append(conf.KThreadPids, pid)
		} else if info.Policy == SchedFIFO || info.Policy == SchedRR || info.Policy == SchedDeadline {
			conf.TargetPids = append(conf.TargetPids, pid)
			info.IsTarget = true
			conf.RTThreadsInfo[pid] = info
		}
	}

	sort.Ints(conf.RTPids)
	sort.Ints(conf.TargetPids)

	multiproc, err := classifyMultiproc(conf, conf.NCores)
	if err != nil {
		slog.Debug("sysconf: multiproc classification", "error", err)
	}
	conf.Multiproc = multiproc
	if conf.Multiproc == MultiprocClustered || conf.Multiproc == MultiprocClusteredNF {
		fixed := conf.Multiproc == MultiprocClustered
		if clusters, ok := buildClusters(conf, fixed); ok {
			conf.RTThreadsInfoClusters = clusters
		}
	}

	return conf, nil
}

func ncpu() int {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return 1
	}
	return set.Count()
}

func listProcessIDs() ([]Pid, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, fmt.Errorf("sysconf: read /proc: %w", err)
	}
	var pids []Pid
	for _, e := range entries {
		if pid, err := strconv.Atoi(e.Name()); err == nil {
			pids = append(pids, pid)
		}
	}
	return pids, nil
}

func probeThread(pid Pid) (ThreadInfo, bool) {
	policy, prio, err := schedParams(pid)
	if err != nil {
		return ThreadInfo{}, false
	}
	if policy == SchedCFS || policy == SchedBatch || policy == SchedIdle {
		// not real-time; still worth knowing about for completeness but
		// the analysis only tracks RT/DEADLINE threads.
		return ThreadInfo{}, false
	}

	var affinity []Cpu
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(pid, &set); err == nil {
		for cpu := 0; cpu < 1024; cpu++ {
			if set.IsSet(cpu) {
				affinity = append(affinity, cpu)
			}
		}
	}

	return ThreadInfo{
		Pid:       pid,
		Priority:  prio,
		Policy:    policy,
		Affinity:  affinity,
		IsKThread: isKernelThread(pid),
	}, true
}

// schedParams reads /proc/<pid>/stat for the scheduling policy field and
// priority, avoiding a raw sched_getscheduler syscall so a probe can run
// unprivileged against another user's threads where /proc is readable.
func schedParams(pid Pid) (SchedPolicy, int, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return SchedError, 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return SchedError, 0, ErrReadProcStat
	}
	line := sc.Text()
	i := strings.LastIndex(line, ") ")
	if i < 0 {
		return SchedError, 0, ErrReadProcStat
	}
	fields := strings.Fields(line[i+2:])
	// fields[0] is the 3rd overall field (state), so fields[37] = rt_priority
	// (40th overall field) and fields[38] = policy (41st)
	if len(fields) < 39 {
		return SchedError, 0, ErrReadProcStat
	}
	rtPrio, _ := strconv.Atoi(fields[37])
	policyNum, _ := strconv.Atoi(fields[38])

	return linuxPolicyToSchedPolicy(policyNum), rtPrio, nil
}

func linuxPolicyToSchedPolicy(n int) SchedPolicy {
	switch n {
	case 0:
		return SchedCFS
	case 1:
		return SchedFIFO
	case 2:
		return SchedRR
	case 3:
		return SchedBatch
	case 5:
		return SchedIdle
	case 6:
		return SchedDeadline
	default:
		return SchedError
	}
}

func isKernelThread(pid Pid) bool {
	_, err := os.Readlink(fmt.Sprintf("/proc/%d/exe", pid))
	return err != nil
}

func allCPUs(n uint32) []Cpu {
	out := make([]Cpu, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// classifyMultiproc mirrors the reference detector's cascade: global first
// (every RT thread can run anywhere), then partitioned (every RT thread
// pinned to exactly one core), then clustered with and without a fixed
// cluster size, falling back to arbitrary processor affinity (APA). The
// returned error, when non-nil, is the reason classification fell back to
// MultiprocError; it never blocks the rest of the probe.
func classifyMultiproc(conf SysConf, nCores uint32) (MultiprocType, error) {
	if len(conf.TargetPids) == 0 {
		return MultiprocError, ErrNoTargetThreads
	}

	for _, pid := range conf.TargetPids {
		if len(conf.RTThreadsInfo[pid].Affinity) == 0 {
			return MultiprocError, fmt.Errorf("%w: pid %d", ErrEmptyAffinityMask, pid)
		}
	}

	if checkGlobal(conf, nCores) {
		return MultiprocGlobal, nil
	}
	if checkPartitioned(conf) {
		return MultiprocPartitioned, nil
	}
	if _, ok := buildClusters(conf, true); ok {
		return MultiprocClustered, nil
	}
	if _, ok := buildClusters(conf, false); ok {
		return MultiprocClusteredNF, nil
	}
	return MultiprocAPA, nil
}

func checkGlobal(conf SysConf, nCores uint32) bool {
	all := allCPUs(nCores)
	for _, pid := range conf.TargetPids {
		if !cpuSetsEqual(conf.RTThreadsInfo[pid].Affinity, all) {
			return false
		}
	}
	return true
}

func checkPartitioned(conf SysConf) bool {
	for _, pid := range conf.TargetPids {
		if len(conf.RTThreadsInfo[pid].Affinity) != 1 {
			return false
		}
	}
	return true
}

// buildClusters groups threads by identical affinity masks, then verifies
// the masks form a partition (pairwise disjoint, never partially
// overlapping). fixedSize additionally requires every mask to have the
// same cardinality.
func buildClusters(conf SysConf, fixedSize bool) ([]Cluster, bool) {
	if len(conf.TargetPids) == 0 {
		return nil, false
	}

	type maskKey string
	masks := map[maskKey][]Cpu{}
	order := []maskKey{}
	size := len(conf.RTThreadsInfo[conf.TargetPids[0]].Affinity)

	for _, pid := range conf.TargetPids {
		aff := conf.RTThreadsInfo[pid].Affinity
		if fixedSize && len(aff) != size {
			return nil, false
		}
		key := maskKey(cpuSetKey(aff))
		if _, seen := masks[key]; !seen {
			order = append(order, key)
			masks[key] = append([]Cpu{}, aff...)
		}
	}

	for i, a := range order {
		for j, b := range order {
			if i == j {
				continue
			}
			if setsOverlapPartially(masks[a], masks[b]) {
				return nil, false
			}
		}
	}

	clusters := make([]Cluster, 0, len(order))
	for i, key := range order {
		clusters = append(clusters, NewCluster(uint32(i), masks[key], nil))
	}
	return clusters, true
}

func cpuSetKey(cpus []Cpu) string {
	sorted := append([]Cpu{}, cpus...)
	sort.Ints(sorted)
	var b strings.Builder
	for _, c := range sorted {
		fmt.Fprintf(&b, "%d,", c)
	}
	return b.String()
}

func cpuSetsEqual(a, b []Cpu) bool {
	if len(a) != len(b) {
		return false
	}
	return cpuSetKey(a) == cpuSetKey(b)
}

func setsOverlapPartially(a, b []Cpu) bool {
	set := map[Cpu]bool{}
	for _, c := range a {
		set[c] = true
	}
	shared := 0
	for _, c := range b {
		if set[c] {
			shared++
		}
	}
	return shared != 0 && shared != len(a)
}
