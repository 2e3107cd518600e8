// Package prompts registers MCP prompt templates that guide report
// composition against the GA4 tools.
//
// Available prompts:
//   - analyze_traffic: traffic overview for a property and date range
//   - conversion_analysis: conversion and key-event breakdown
//   - audience_insights: demographic and technology profile
//   - compare_periods: period-over-period comparison of core metrics
//
// Each prompt takes a property_id argument and returns user messages
// that walk the model through the relevant analytics tools.
package prompts
