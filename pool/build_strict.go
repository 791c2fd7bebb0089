//go:build poolstrict

package pool

const defaultPolicy = PolicyAbort
