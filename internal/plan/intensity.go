package plan

// Iterations maps level 1-9 to an iteration count for exhaustive tools.
func Iterations(level int) int {
	level = clampLevel(level)
	return level*level*level/25 + 1
}

// Scaled maps level 1-9 onto 0..limit.
func Scaled(level, limit int) int {
	level = clampLevel(level)
	return min(level*limit/9, limit)
}

// Effort maps level 1-9 onto 1..limit+1.
func Effort(level, limit int) int {
	return Scaled(level, limit) + 1
}

// Quality maps level 1-9 onto a lossy quality that drops as effort rises.
func Quality(level int) int {
	return max(60, 100-clampLevel(level)*4)
}

func clampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > 9 {
		return 9
	}
	return level
}
