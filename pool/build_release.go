//go:build !pooldebug

package pool

const (
	defaultDebug      = false
	defaultHistograms = false
)
