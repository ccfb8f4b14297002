// Package catalog loads class definitions from CUE files.
//
// A catalog directory holds one CUE package with a top-level "class" struct;
// each field is one class:
//
//	package catalog
//
//	class: evening_english: {
//		name:     "Evening English"
//		pattern:  "T2 / T4 / T6 • 18:30"
//		start:    "2024-01-01"
//		sessions: 24
//		timezone: "Asia/Ho_Chi_Minh" // optional, default UTC
//	}
//
// Instead of pattern, a class may give days and time separately:
//
//	days: ["T3", "T5"]
//	time: "19:00"
//
// Compile errors carry the CUE source position of the offending field.
package catalog
