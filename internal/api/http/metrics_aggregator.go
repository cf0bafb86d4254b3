package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MarinaBrowser/marina/shell/internal/bridge"
	"github.com/MarinaBrowser/marina/shell/internal/domain/session"
	"github.com/MarinaBrowser/marina/shell/internal/domain/shell"
	"github.com/MarinaBrowser/marina/shell/internal/infrastructure/agent"
	"github.com/MarinaBrowser/marina/shell/internal/infrastructure/monitoring"
	httpclient "github.com/MarinaBrowser/marina/shell/internal/providers/http/client"
)

// MetricsAggregator folds every component's counters into one snapshot
// for the JSON endpoint and the dashboard. Prometheus scraping stays on
// /metrics; this view is for humans and local tooling.
type MetricsAggregator struct {
	metrics  *monitoring.Metrics
	sh       *shell.Shell
	sessions *session.Manager
	br       *bridge.Bridge
	agent    *agent.Client
	web      *httpclient.Client
}

// NewMetricsAggregator creates a metrics aggregator. The session
// manager, bridge, agent, and web client are all optional.
func NewMetricsAggregator(metrics *monitoring.Metrics, sh *shell.Shell, sessions *session.Manager, br *bridge.Bridge, ag *agent.Client, web *httpclient.Client) *MetricsAggregator {
	return &MetricsAggregator{
		metrics:  metrics,
		sh:       sh,
		sessions: sessions,
		br:       br,
		agent:    ag,
		web:      web,
	}
}

// MetricsSnapshot is the aggregated view of the whole shell.
type MetricsSnapshot struct {
	Timestamp time.Time              `json:"timestamp"`
	Shell     shell.Stats            `json:"shell"`
	Session   *session.Stats         `json:"session,omitempty"`
	Bridge    map[string]interface{} `json:"bridge,omitempty"`
	Breakers  map[string]string      `json:"breakers,omitempty"`
	Summary   MetricsSummary         `json:"summary"`
}

// MetricsSummary provides high-level metrics.
type MetricsSummary struct {
	TotalRequests    int64   `json:"total_requests"`
	AverageLatencyMs float64 `json:"average_latency_ms"`
	ErrorRate        float64 `json:"error_rate"`
	OpenTabs         int     `json:"open_tabs"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
}

// GetAggregatedMetrics returns counters from every shell component.
func (ma *MetricsAggregator) GetAggregatedMetrics(c *gin.Context) {
	snapshot := MetricsSnapshot{
		Timestamp: time.Now(),
		Shell:     ma.sh.Stats(),
		Breakers:  ma.breakerStates(),
		Summary:   ma.calculateSummary(),
	}

	if ma.sessions != nil {
		stats := ma.sessions.Stats()
		snapshot.Session = &stats
	}
	if ma.br != nil {
		snapshot.Bridge = map[string]interface{}{
			"connected": ma.br.Connected(),
		}
		if status := ma.br.AdblockStatus(); status != nil {
			snapshot.Bridge["adblock"] = status
		}
	}

	c.JSON(http.StatusOK, snapshot)
}

func (ma *MetricsAggregator) breakerStates() map[string]string {
	states := make(map[string]string, 2)
	if ma.agent != nil {
		states["agent"] = ma.agent.BreakerState().String()
	}
	if ma.web != nil {
		states["web"] = ma.web.BreakerState().String()
	}
	if len(states) == 0 {
		return nil
	}
	return states
}

// calculateSummary computes high-level summary metrics.
func (ma *MetricsAggregator) calculateSummary() MetricsSummary {
	snapshot := ma.metrics.GetSnapshot()
	uptime := ma.metrics.GetUptimeSeconds()

	var avgLatency float64
	if snapshot.RequestCount > 0 {
		avgLatency = (snapshot.TotalDuration / float64(snapshot.RequestCount)) * 1000
	}

	var errorRate float64
	if snapshot.TotalRequests > 0 {
		errorRate = float64(snapshot.TotalErrors) / float64(snapshot.TotalRequests)
	}

	return MetricsSummary{
		TotalRequests:    snapshot.TotalRequests,
		AverageLatencyMs: avgLatency,
		ErrorRate:        errorRate,
		OpenTabs:         ma.sh.Stats().Org.TotalTabs,
		UptimeSeconds:    uptime,
	}
}

// GetMetricsDashboard returns an HTML dashboard over /metrics/json.
func (ma *MetricsAggregator) GetMetricsDashboard(c *gin.Context) {
	html := `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Marina Shell Diagnostics</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
            background: #0d1117;
            color: #e6edf3;
            padding: 20px;
        }
        .container { max-width: 1200px; margin: 0 auto; }
        h1 { font-size: 1.6rem; margin-bottom: 6px; color: #58a6ff; }
        .subtitle { color: #8b949e; margin-bottom: 24px; }
        .links { margin-bottom: 20px; }
        .links a {
            display: inline-block;
            margin-right: 10px;
            padding: 6px 14px;
            background: #161b22;
            color: #58a6ff;
            text-decoration: none;
            border-radius: 6px;
            border: 1px solid #30363d;
            font-size: 0.9rem;
        }
        .grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(280px, 1fr));
            gap: 16px;
        }
        .card {
            background: #161b22;
            border-radius: 10px;
            padding: 16px;
            border: 1px solid #30363d;
        }
        .card h2 { font-size: 1rem; margin-bottom: 12px; color: #58a6ff; }
        .metric {
            display: flex;
            justify-content: space-between;
            padding: 6px 0;
            border-bottom: 1px solid #21262d;
            font-size: 0.9rem;
        }
        .metric:last-child { border-bottom: none; }
        .metric-label { color: #8b949e; }
        .metric-value { font-family: monospace; color: #e6edf3; }
        .timestamp { color: #484f58; text-align: center; margin-top: 20px; font-size: 0.85rem; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Marina Shell Diagnostics</h1>
        <p class="subtitle">Tabs, surfaces, gestures, and session persistence at a glance</p>

        <div class="links">
            <a href="/metrics">Prometheus</a>
            <a href="/metrics/json">JSON</a>
            <a href="/health">Health</a>
            <a href="/stats">Stats</a>
        </div>

        <div id="metrics-container" class="grid">
            <p style="color: #8b949e;">Loading...</p>
        </div>

        <p class="timestamp" id="timestamp"></p>
    </div>

    <script>
        function card(title, entries) {
            var html = '<div class="card"><h2>' + title + '</h2>';
            for (var i = 0; i < entries.length; i++) {
                html += '<div class="metric"><span class="metric-label">' + entries[i][0] +
                    '</span><span class="metric-value">' + entries[i][1] + '</span></div>';
            }
            return html + '</div>';
        }

        function render(data) {
            var s = data.summary || {};
            var org = (data.shell || {}).org || {};
            var surfaces = (data.shell || {}).surfaces || {};
            var gestures = (data.shell || {}).gestures || {};
            var session = data.session || {};
            var bridgeInfo = data.bridge || {};
            var breakers = data.breakers || {};

            var html = '';
            html += card('Summary', [
                ['Requests', s.total_requests || 0],
                ['Avg latency', (s.average_latency_ms || 0).toFixed(2) + ' ms'],
                ['Error rate', ((s.error_rate || 0) * 100).toFixed(2) + '%'],
                ['Open tabs', s.open_tabs || 0],
                ['Uptime', Math.round(s.uptime_seconds || 0) + ' s']
            ]);
            html += card('Organization', [
                ['Realms', org.total_realms || 0],
                ['Docks', org.total_docks || 0],
                ['Tabs', org.total_tabs || 0],
                ['Loose tabs', org.loose_tabs || 0],
                ['Pinned tabs', org.pinned_tabs || 0]
            ]);
            html += card('Surfaces', [
                ['Mounting', surfaces.mounting || 0],
                ['Visible', surfaces.visible || 0],
                ['Hidden', surfaces.hidden || 0],
                ['Crashed', surfaces.crashed || 0],
                ['Pending navs', surfaces.pending_navigations || 0]
            ]);
            html += card('Gestures', [
                ['Back', gestures.back || 0],
                ['Forward', gestures.forward || 0],
                ['Abandoned', gestures.abandoned || 0],
                ['Dropped', gestures.dropped || 0],
                ['Mean magnitude', (gestures.mean_magnitude || 0).toFixed(1)]
            ]);
            html += card('Session', [
                ['Saves', session.saves || 0],
                ['Dirty', session.dirty ? 'yes' : 'no'],
                ['Last saved', session.last_saved || 'never']
            ]);
            var bridgeEntries = [['Connected', bridgeInfo.connected ? 'yes' : 'no']];
            for (var name in breakers) {
                bridgeEntries.push(['Breaker: ' + name, breakers[name]]);
            }
            html += card('Bridge', bridgeEntries);

            document.getElementById('metrics-container').innerHTML = html;
            document.getElementById('timestamp').textContent =
                'Last updated: ' + new Date(data.timestamp).toLocaleString();
        }

        function load() {
            fetch('/metrics/json')
                .then(function(r) { return r.json(); })
                .then(render)
                .catch(function() {
                    document.getElementById('metrics-container').innerHTML =
                        '<p style="color: #f85149;">Error loading metrics</p>';
                });
        }

        load();
        setInterval(load, 5000);
    </script>
</body>
</html>`

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, html)
}
