package dashboard

// View is the data handed to the HTML page template.
type View struct {
	Title     string
	Scale     Scale
	Cards     Cards
	Segments  []SegmentRow
	Templates []Template
	HasCharts bool
	Refreshed string

	// ChartsURL points the chart frame at the live charts page; ChartsDoc
	// inlines the charts page instead for static exports.
	ChartsURL string
	ChartsDoc string
}
