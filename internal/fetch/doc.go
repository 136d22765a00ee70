// Package fetch downloads the scheduler run-log export from the web
// dashboard.
//
// Driver is the contract; QuickSightDriver implements it with a chromedp
// browser session: multi-step signin, dashboard navigation, export menu
// click, then a wait on the download-progress event. All browser timing
// and selector fallbacks live here so the rest of the pipeline stays
// deterministic.
package fetch
