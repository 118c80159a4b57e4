package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

const mb = 1024.0 * 1024.0

// GatewayStats je heartbeat brány (RPi/PC), na které běží celý ECOBINS stack.
// Jde do logu (logs/bin-simulator), odkud ho uloží Log Collector.
type GatewayStats struct {
	CPULoad     float64
	RamUsedMB   float64 // Total - Available, bez diskové cache
	RamTotalMB  float64
	DiskUsedGB  float64
	DiskTotalGB float64

	// Services má jednu položku za každou běžící službu ze stackServices, v jejich pořadí.
	Services []ServiceStats
}

// ServiceStats je součet za všechny procesy jedné služby.
type ServiceStats struct {
	Name       string
	Processes  int
	RamMB      float64
	CPUPercent float64 // průměr od startu procesů, ne okamžitá zátěž
}

// stackService mapuje službu na podřetězec názvu procesu.
type stackService struct {
	name    string
	keyword string
}

// Linux zkracuje jméno procesu na 15 znaků ("telemetry-inges"), proto klíčová slova.
var stackServices = []stackService{
	{"bins-api", "bins-api"},
	{"telemetry-ingestor", "telemetry"},
	{"web-dashboard", "web-dashboard"},
	{"log-collector", "log-collector"},
	{"bin-simulator", "bin-simulator"},
	{"mosquitto", "mosquitto"},
	{"postgres", "postgres"},
	{"valkey", "valkey"},
}

// processSample je jeden změřený proces.
type processSample struct {
	name string
	rss  uint64
	cpu  float64
}

// CollectStats změří bránu. Chyba jedné části se jen zaloguje, zbytek se měří dál.
func CollectStats(ctx context.Context, logger *slog.Logger) *GatewayStats {
	stats := &GatewayStats{}

	// cpu.Percent blokuje 1 s, percpu=false: průměr přes všechna jádra.
	if pct, err := cpu.PercentWithContext(ctx, time.Second, false); err == nil && len(pct) > 0 {
		stats.CPULoad = pct[0]
	} else {
		logger.Error("Chyba při čtení CPU statistik", "error", err)
	}

	if vMem, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		stats.RamUsedMB = float64(vMem.Total-vMem.Available) / mb
		stats.RamTotalMB = float64(vMem.Total) / mb
	} else {
		logger.Error("Chyba při čtení RAM statistik", "error", err)
	}

	if dStat, err := disk.UsageWithContext(ctx, "/"); err == nil {
		stats.DiskUsedGB = float64(dStat.Used) / mb / 1024.0
		stats.DiskTotalGB = float64(dStat.Total) / mb / 1024.0
	} else {
		logger.Error("Chyba při čtení statistik disku", "error", err)
	}

	stats.Services = groupByService(sampleProcesses(ctx, logger))
	return stats
}

// sampleProcesses vrátí RSS a CPU procesů, které patří některé službě stacku.
// Díky 'pid: host' v Docker Compose vidí i procesy ostatních kontejnerů.
func sampleProcesses(ctx context.Context, logger *slog.Logger) []processSample {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		logger.Error("Chyba při čtení seznamu procesů", "error", err)
		return nil
	}

	var out []processSample
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || serviceOf(name) == "" {
			continue // proces mezitím skončil nebo nepatří do stacku
		}
		s := processSample{name: name}
		if memInfo, err := p.MemoryInfoWithContext(ctx); err == nil {
			s.rss = memInfo.RSS
		}
		if c, err := p.CPUPercentWithContext(ctx); err == nil {
			s.cpu = c
		}
		out = append(out, s)
	}
	return out
}

// serviceOf vrátí jméno služby pro název procesu, nebo "" když do stacku nepatří.
func serviceOf(processName string) string {
	for _, svc := range stackServices {
		if strings.Contains(processName, svc.keyword) {
			return svc.name
		}
	}
	return ""
}

// groupByService sečte vzorky po službách. Služby bez procesu ve výsledku nejsou.
func groupByService(samples []processSample) []ServiceStats {
	byName := make(map[string]*ServiceStats)
	for _, s := range samples {
		name := serviceOf(s.name)
		if name == "" {
			continue
		}
		st, ok := byName[name]
		if !ok {
			st = &ServiceStats{Name: name}
			byName[name] = st
		}
		st.Processes++
		st.RamMB += float64(s.rss) / mb
		st.CPUPercent += s.cpu
	}

	out := make([]ServiceStats, 0, len(byName))
	for _, svc := range stackServices {
		if st, ok := byName[svc.name]; ok {
			out = append(out, *st)
		}
	}
	return out
}

// LogAttrs vrátí statistiky jako atributy pro slog, služby jako skupiny.
func (s *GatewayStats) LogAttrs() []any {
	attrs := []any{
		"cpu_percent", round1(s.CPULoad),
		"ram_used_mb", round1(s.RamUsedMB),
		"ram_total_mb", round1(s.RamTotalMB),
		"disk_used_gb", round1(s.DiskUsedGB),
		"disk_total_gb", round1(s.DiskTotalGB),
	}
	for _, svc := range s.Services {
		attrs = append(attrs, slog.Group(svc.Name,
			"procs", svc.Processes,
			"ram_mb", round1(svc.RamMB),
			"cpu_percent", round1(svc.CPUPercent),
		))
	}
	return attrs
}
