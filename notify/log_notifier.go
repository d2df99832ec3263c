package notify

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ Notifier = new(LogFileNotifier)

// LogFileNotifier appends every notification as a JSON line to a file. It
// doubles as an audit trail of what owners were told about their runs.
type LogFileNotifier struct {
	fileName string
	logger   *zap.Logger
}

func NewLogFileNotifier(fileName string) (*LogFileNotifier, error) {
	enccoderConfig := zap.NewProductionEncoderConfig()
	enccoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	enccoderConfig.StacktraceKey = ""
	fileEncoder := zapcore.NewJSONEncoder(enccoderConfig)
	logFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	writer := zapcore.AddSync(logFile)
	core := zapcore.NewTee(zapcore.NewCore(fileEncoder, writer, zapcore.InfoLevel))
	return &LogFileNotifier{
		fileName: fileName,
		logger:   zap.New(core),
	}, nil
}

func (ln *LogFileNotifier) NotifyWorkflowStart(channel string, workflowName string, executionId string) error {
	ln.logger.Info("workflow started", zap.String("channel", channel), zap.String("workflow", workflowName), zap.String("executionId", executionId))
	return nil
}

func (ln *LogFileNotifier) NotifyWorkflowComplete(channel string, workflowName string, executionId string) error {
	ln.logger.Info("workflow completed", zap.String("channel", channel), zap.String("workflow", workflowName), zap.String("executionId", executionId))
	return nil
}

func (ln *LogFileNotifier) NotifyWorkflowError(channel string, workflowName string, executionId string, errorMessage string) error {
	ln.logger.Info("workflow failed", zap.String("channel", channel), zap.String("workflow", workflowName), zap.String("executionId", executionId), zap.String("error", errorMessage))
	return nil
}

func (ln *LogFileNotifier) NotifyNodeExecution(channel string, nodeName string, nodeType string, outputJson string) error {
	ln.logger.Info("node executed", zap.String("channel", channel), zap.String("node", nodeName), zap.String("type", nodeType), zap.String("output", outputJson))
	return nil
}
