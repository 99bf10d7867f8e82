package report

// htmlTemplate is the main HTML template for the report
const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Name}} - Render Benchmark Report</title>
    <script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
    <style>
        :root {
            --bg: #f8fafc;
            --card: #ffffff;
            --text: #1e293b;
            --muted: #64748b;
            --border: #e2e8f0;
            --primary: #3b82f6;
            --success: #22c55e;
            --error: #ef4444;
        }
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif;
            background: var(--bg);
            color: var(--text);
            line-height: 1.6;
        }
        .container { max-width: 1100px; margin: 0 auto; padding: 2rem; }
        header { display: flex; justify-content: space-between; align-items: center; margin-bottom: 2rem; }
        .badge { padding: 0.25rem 0.75rem; border-radius: 9999px; font-weight: 600; color: #fff; }
        .badge.passed { background: var(--success); }
        .badge.failed { background: var(--error); }
        .grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 1rem; margin-bottom: 2rem; }
        .card { background: var(--card); border: 1px solid var(--border); border-radius: 0.5rem; padding: 1rem; }
        .card .label { color: var(--muted); font-size: 0.85rem; }
        .card .value { font-size: 1.5rem; font-weight: 600; }
        table { width: 100%; border-collapse: collapse; background: var(--card); margin-bottom: 2rem; }
        th, td { text-align: left; padding: 0.5rem 0.75rem; border-bottom: 1px solid var(--border); }
        .pass { color: var(--success); }
        .fail { color: var(--error); }
        .chart-container { background: var(--card); border: 1px solid var(--border); border-radius: 0.5rem; padding: 1rem; margin-bottom: 2rem; }
        pre { background: var(--card); border: 1px solid var(--border); padding: 1rem; }
    </style>
</head>
<body>
<div class="container">
    <header>
        <div>
            <h1>{{.Name}}</h1>
            <div class="label">{{formatTime .StartTime}} - {{formatTime .EndTime}}</div>
        </div>
        {{if .Passed}}<span class="badge passed">✓ PASSED</span>{{else}}<span class="badge failed">✗ FAILED</span>{{end}}
    </header>

    <div class="grid">
        <div class="card"><div class="label">Elapsed</div><div class="value">{{formatDuration .Elapsed}}</div></div>
        <div class="card"><div class="label">Iterations</div><div class="value">{{.Timing.Warmup}} + {{.Timing.Count}}</div></div>
        {{with .Metrics}}
        <div class="card"><div class="label">Frames per Second</div><div class="value">{{printf "%.1f" .FPS}}</div></div>
        <div class="card"><div class="label">P95 Frame Time</div><div class="value">{{formatFrameTime .FrameTime.P95}}</div></div>
        {{end}}
    </div>

    <pre>start : {{millis .Timing.Start}}
end : {{millis .Timing.End}}</pre>
    <br>

    {{with .Metrics}}
    <h2>Frame Time Distribution</h2>
    <table>
        <tr><th>Min</th><th>Mean</th><th>P50</th><th>P90</th><th>P95</th><th>P99</th><th>Max</th><th>Std Dev</th></tr>
        <tr>
            <td>{{formatFrameTime .FrameTime.Min}}</td>
            <td>{{formatFrameTime .FrameTime.Mean}}</td>
            <td>{{formatFrameTime .FrameTime.P50}}</td>
            <td>{{formatFrameTime .FrameTime.P90}}</td>
            <td>{{formatFrameTime .FrameTime.P95}}</td>
            <td>{{formatFrameTime .FrameTime.P99}}</td>
            <td>{{formatFrameTime .FrameTime.Max}}</td>
            <td>{{formatFrameTime .FrameTime.StdDev}}</td>
        </tr>
    </table>
    {{end}}

    {{if .Thresholds}}
    <h2>Thresholds</h2>
    <table>
        <tr><th></th><th>Metric</th><th>Expression</th><th>Actual</th><th>Message</th></tr>
        {{range .Thresholds}}
        <tr>
            <td>{{if .Passed}}<span class="pass">✓</span>{{else}}<span class="fail">✗</span>{{end}}</td>
            <td>{{.Metric}}</td>
            <td>{{.Expression}}</td>
            <td>{{.Value}}</td>
            <td>{{.Message}}</td>
        </tr>
        {{end}}
    </table>
    {{end}}

    <h2>Frame Buckets</h2>
    <div class="chart-container"><canvas id="fpsChart"></canvas></div>
    <div class="chart-container"><canvas id="frameTimeChart"></canvas></div>
</div>

<script>
    const bucketData = {{.BucketsJSON}};
    const labels = bucketData.map(b => '#' + b.index);

    new Chart(document.getElementById('fpsChart'), {
        type: 'line',
        data: {
            labels: labels,
            datasets: [{ label: 'FPS', data: bucketData.map(b => b.fps), borderColor: '#3b82f6', tension: 0.2 }]
        },
        options: { responsive: true }
    });

    new Chart(document.getElementById('frameTimeChart'), {
        type: 'line',
        data: {
            labels: labels,
            datasets: [
                { label: 'Mean (ms)', data: bucketData.map(b => b.mean / 1000), borderColor: '#22c55e' },
                { label: 'P95 (ms)', data: bucketData.map(b => b.p95 / 1000), borderColor: '#f59e0b' },
                { label: 'Max (ms)', data: bucketData.map(b => b.max / 1000), borderColor: '#ef4444' }
            ]
        },
        options: { responsive: true }
    });
</script>
</body>
</html>
`
