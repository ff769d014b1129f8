package collector

import "errors"

var (
	// ErrNoBootTime indicates that /proc/stat had no usable btime line.
	ErrNoBootTime = errors.New("collector: no boot time")

	// ErrNoStat indicates that /proc/<pid>/stat was empty or malformed.
	ErrNoStat = errors.New("collector: malformed or empty stat")

	// ErrShortStat indicates that /proc/<pid>/stat had fewer fields than expected.
	ErrShortStat = errors.New("collector: short stat")

	// ErrNoUid indicates that /proc/<pid>/status had no Uid line.
	ErrNoUid = errors.New("collector: no uid in status")
)
