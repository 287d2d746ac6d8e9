package main

// Metric names recorded by the worker.
const (
	MetricInvoicesAudited      = "InvoicesAudited"
	MetricInvoiceTotalMismatch = "InvoiceTotalMismatch"
	MetricMessagesDropped      = "WorkerMessagesDropped"
)
