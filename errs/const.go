package errs

const (
	ErrCode_OK                 = 0
	ErrCode_Unknown            = 1
	ErrCode_NotInitialized     = 100
	ErrCode_AlreadyInitialized = 101
	ErrCode_ClockStart         = 102
	ErrCode_ClockStarted       = 103
	ErrCode_BadConfig          = 200
	ErrCode_BadFrame           = 300
	ErrCode_GoChanFull         = 400
	ErrCode_GoChanClosed       = 401
	ErrCode_RoutineClosed      = 402
)

var (
	Unknown            = CreateCodeError(ErrCode_Unknown, "UNKNOWN")
	NotInitialized     = CreateCodeError(ErrCode_NotInitialized, "DRIVER_NOT_INITIALIZED")
	AlreadyInitialized = CreateCodeError(ErrCode_AlreadyInitialized, "DRIVER_ALREADY_INITIALIZED")
	ClockStart         = CreateCodeError(ErrCode_ClockStart, "CLOCK_START_FAILED")
	ClockStarted       = CreateCodeError(ErrCode_ClockStarted, "CLOCK_ALREADY_STARTED")
	BadConfig          = CreateCodeError(ErrCode_BadConfig, "BAD_CONFIG")
	BadFrame           = CreateCodeError(ErrCode_BadFrame, "BAD_FRAME")
	GoChanFull         = CreateCodeError(ErrCode_GoChanFull, "GO_CHAN_FULL")
	GoChanClosed       = CreateCodeError(ErrCode_GoChanClosed, "GO_CHAN_CLOSED")
	RoutineClosed      = CreateCodeError(ErrCode_RoutineClosed, "ROUTINE_CLOSED")
)
