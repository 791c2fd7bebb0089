//go:build pooldebug

package pool

const (
	defaultDebug      = true
	defaultHistograms = true
)
