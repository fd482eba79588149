package internal

var NewTestLogger = newTestLogger
