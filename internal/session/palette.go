package session

// cursorColors is the fixed palette participants draw their identifying
// color from. Order matters: allocation always picks the first entry not in
// use, so early joiners get stable colors across reconnects.
var cursorColors = []string{
	"#FF0000", "#00FF00", "#0000FF", "#FFA500", "#800080",
	"#008000", "#FF69B4", "#4B0082", "#FF4500", "#32CD32",
	"#BA55D3", "#20B2AA", "#FF6347", "#4169E1", "#8B4513",
	"#48D1CC", "#FF1493", "#4682B4", "#DC143C", "#9370DB",
}

// nextColor returns the first palette entry absent from used. When every
// color is taken it falls back to the first entry; collisions are accepted
// rather than signaled.
func nextColor(used map[string]bool) string {
	for _, c := range cursorColors {
		if !used[c] {
			return c
		}
	}
	return cursorColors[0]
}
