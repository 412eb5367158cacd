package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	gometrics "github.com/rcrowley/go-metrics"
)

// Upload outcomes, one counter each.
const (
	OutcomeStoredImage      = "stored_image"
	OutcomeStoredDocument   = "stored_document"
	OutcomeRejected         = "rejected"
	OutcomeConversionFailed = "conversion_failed"
	OutcomeFailed           = "failed"
)

var outcomes = []string{
	OutcomeStoredImage,
	OutcomeStoredDocument,
	OutcomeRejected,
	OutcomeConversionFailed,
	OutcomeFailed,
}

var quantiles = []float64{0.5, 0.9, 0.99}

var (
	registry           = gometrics.NewRegistry()
	conversionDuration = gometrics.GetOrRegisterTimer("conversion_duration", registry)
)

// IncUpload counts one finished upload with the given outcome.
func IncUpload(outcome string) {
	gometrics.GetOrRegisterCounter("uploads_"+outcome, registry).Inc(1)
}

// UploadCount returns the counter for outcome.
func UploadCount(outcome string) int64 {
	return gometrics.GetOrRegisterCounter("uploads_"+outcome, registry).Count()
}

// ObserveConversion records one call to the conversion service.
func ObserveConversion(d time.Duration) {
	if d < 0 {
		d = 0
	}
	conversionDuration.Update(d)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# HELP ingest_uploads_total Finished uploads by outcome\n")
	fmt.Fprintf(&buf, "# TYPE ingest_uploads_total counter\n")
	for _, outcome := range outcomes {
		fmt.Fprintf(&buf, "ingest_uploads_total{outcome=%q} %d\n", outcome, UploadCount(outcome))
	}

	snap := conversionDuration.Snapshot()
	fmt.Fprintf(&buf, "# HELP ingest_conversion_duration_ms Conversion service latency in milliseconds\n")
	fmt.Fprintf(&buf, "# TYPE ingest_conversion_duration_ms summary\n")
	values := snap.Percentiles(quantiles)
	for i, q := range quantiles {
		fmt.Fprintf(&buf, "ingest_conversion_duration_ms{quantile=\"%s\"} %s\n", formatFloat(q), formatFloat(toMillis(values[i])))
	}
	fmt.Fprintf(&buf, "ingest_conversion_duration_ms_sum %s\n", formatFloat(toMillis(float64(snap.Sum()))))
	fmt.Fprintf(&buf, "ingest_conversion_duration_ms_count %d\n", snap.Count())
	return buf.String()
}

func toMillis(ns float64) float64 {
	return ns / float64(time.Millisecond)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
