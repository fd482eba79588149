package mcpedit

// Internal functions exposed for tests.
var ContentText = contentText
