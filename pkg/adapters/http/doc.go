// Package http is the HTTP trigger for the paragraph pipeline, with health,
// metrics and a side-effect free inspection endpoint.
package http
