package scoring

// FindDeadline is exported for testing
var FindDeadline = findDeadline
