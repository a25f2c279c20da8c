package config

import (
	"log"
	"time"
)

// LogRequest logs an API request being made.
func LogRequest(component, method, url string, params map[string]interface{}) {
	if len(params) > 0 {
		log.Printf("[%s] %s %s params=%v", component, method, url, params)
	} else {
		log.Printf("[%s] %s %s", component, method, url)
	}
}

// LogResponse logs an API response received.
func LogResponse(component string, statusCode int, duration time.Duration, resultCount int) {
	log.Printf("[%s] response status=%d duration=%dms results=%d",
		component, statusCode, duration.Milliseconds(), resultCount)
}

// LogError logs an error from an operation.
func LogError(component, operation string, err error) {
	log.Printf("[%s] %s error: %v", component, operation, err)
}

// LogUpsert logs database write phases.
func LogUpsert(component string, count int64, duration time.Duration) {
	log.Printf("[%s] wrote %d rows in %dms", component, count, duration.Milliseconds())
}
