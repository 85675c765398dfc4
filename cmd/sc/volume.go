package main

import (
	"fmt"
	"strconv"
	"strings"
)

type volumeOpKind int

const (
	volumeSet volumeOpKind = iota
	volumeUp
	volumeDown
)

type volumeOp struct {
	kind   volumeOpKind
	amount int
}

// parseVolumeArg understands absolute ("50") and relative ("+5", "-5")
// volume arguments, both bounded to 0..100.
func parseVolumeArg(arg string) (volumeOp, error) {
	switch {
	case strings.HasPrefix(arg, "+"):
		if len(arg) < 2 {
			return volumeOp{}, fmt.Errorf("please provide a value to increase the volume by")
		}

		amount, err := parseVolumeNum(arg[1:])
		if err != nil {
			return volumeOp{}, err
		}

		return volumeOp{kind: volumeUp, amount: amount}, nil

	case strings.HasPrefix(arg, "-"):
		if len(arg) < 2 {
			return volumeOp{}, fmt.Errorf("please provide a value to decrease the volume by")
		}

		amount, err := parseVolumeNum(arg[1:])
		if err != nil {
			return volumeOp{}, err
		}

		return volumeOp{kind: volumeDown, amount: amount}, nil
	}

	amount, err := parseVolumeNum(arg)
	if err != nil {
		return volumeOp{}, err
	}

	return volumeOp{kind: volumeSet, amount: amount}, nil
}

func parseVolumeNum(str string) (int, error) {
	// Atoi accepts a leading sign, which would let "++5" through.
	for _, r := range str {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%q is not a valid number value", str)
		}
	}

	num, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("%q is not a valid number value", str)
	}

	if num < 0 || num > 100 {
		return 0, fmt.Errorf("please provide a volume value between 0 and 100")
	}

	return num, nil
}
