package report

// GenerateReportRequest is the body of POST /reports/generate.
// Market defaults to HK when omitted.
type GenerateReportRequest struct {
	Company string `json:"company" binding:"required"`
	Code    string `json:"code" binding:"required"`
	Market  string `json:"market"`
}
