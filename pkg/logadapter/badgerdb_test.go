package logadapter

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBadger2Zap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewBadger2Zap(zap.New(core))

	logger.Warningf("Value log %d is corrupt\n", 3)
	logger.Infof("Compaction done\n")

	all := logs.All()
	require.Len(t, all, 2)
	require.Equal(t, zapcore.WarnLevel, all[0].Level)
	require.Equal(t, "Value log 3 is corrupt", all[0].Message)
	require.Equal(t, "badger", all[0].LoggerName)
	// INFO is downgraded
	require.Equal(t, zapcore.DebugLevel, all[1].Level)
}
