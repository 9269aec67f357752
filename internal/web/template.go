package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/streetlight/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"stateOrUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Street Light</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Street Light<span id="live-dot" class="live-dot pending" title="connecting"></span></h1>

<h2>State</h2>
<table>
<tr><th>Light</th><td id="state" class="{{if eq (stateOrUnknown (printf "%s" .State)) "ON"}}on{{else if eq (stateOrUnknown (printf "%s" .State)) "OFF"}}off{{else}}unknown{{end}}">{{stateOrUnknown (printf "%s" .State)}}</td></tr>
<tr><th>Smoothed value</th><td id="smoothed">{{.Smoothed}}</td></tr>
<tr><th>Last raw value</th><td id="raw">{{.Raw}}</td></tr>
<tr><th>Calibrated</th><td id="calibrated">{{if .Calibrated}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Thresholds</h2>
<table>
<tr><th>ON at or below</th><td id="threshold-on">{{.Thresholds.On}}</td></tr>
<tr><th>OFF at or above</th><td id="threshold-off">{{.Thresholds.Off}}</td></tr>
{{if .HaveSamples}}<tr><th>Raw range seen</th><td id="raw-range">{{.RawMin}} .. {{.RawMax}}</td></tr>{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td id="mqtt" class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
{{if .Config.Broker}}<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>{{end}}
</table>

<h2>Transitions</h2>
<table>
<tr><th>Switched ON</th><td id="count-on">{{.Counts.On}}</td></tr>
<tr><th>Switched OFF</th><td id="count-off">{{.Counts.Off}}</td></tr>
</table>

<h2>Daemon</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Sample interval</th><td>{{.Config.SampleMs}} ms</td></tr>
<tr><th>Telemetry interval</th><td>{{.Config.TelemetryMs}} ms</td></tr>
<tr><th>Smoothing window</th><td>{{.Config.Window}}</td></tr>
<tr><th>Sensor</th><td>{{.Config.Device}}</td></tr>
</table>

<script>
(function () {
	var dot = document.getElementById("live-dot");
	var proto = location.protocol === "https:" ? "wss://" : "ws://";
	var ws = new WebSocket(proto + location.host + "/live");

	function setText(id, text) {
		var el = document.getElementById(id);
		if (el) el.textContent = text;
	}

	ws.onopen = function () { dot.className = "live-dot ok"; dot.title = "live"; };
	ws.onclose = function () { dot.className = "live-dot err"; dot.title = "disconnected"; };
	ws.onerror = function () { dot.className = "live-dot err"; dot.title = "error"; };
	ws.onmessage = function (ev) {
		var st;
		try { st = JSON.parse(ev.data).status; } catch (e) { return; }
		var el = document.getElementById("state");
		if (el) {
			el.textContent = st.state;
			el.className = st.state === "ON" ? "on" : (st.state === "OFF" ? "off" : "unknown");
		}
		setText("smoothed", st.smoothed);
		setText("raw", st.raw);
		setText("calibrated", st.calibrated ? "yes" : "no");
		setText("threshold-on", st.threshold_on);
		setText("threshold-off", st.threshold_off);
		if (st.raw_min !== undefined) setText("raw-range", st.raw_min + " .. " + st.raw_max);
		setText("count-on", st.event_counts.on);
		setText("count-off", st.event_counts.off);
		var mq = document.getElementById("mqtt");
		if (mq) {
			mq.textContent = st.mqtt.connected ? "connected" : "disconnected";
			mq.className = st.mqtt.connected ? "connected" : "disconnected";
		}
	};
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Render errors end up as a truncated page; nothing useful to do.
	_ = indexTmpl.Execute(w, snap)
}
