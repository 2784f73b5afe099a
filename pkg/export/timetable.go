package export

// TimetableRow is the flattened shape of one schedule entry for export.
type TimetableRow struct {
	Day     string
	Time    string
	Course  string
	Code    string
	Faculty string
	Room    string
}

// TimetableHeaders is the column order used by timetable exports.
var TimetableHeaders = []string{"Day", "Time", "Course", "Code", "Faculty", "Room"}

// TimetableDataset converts flattened rows into an export dataset.
func TimetableDataset(rows []TimetableRow) Dataset {
	out := Dataset{Headers: TimetableHeaders, Rows: make([]map[string]string, 0, len(rows))}
	for _, r := range rows {
		out.Rows = append(out.Rows, map[string]string{
			"Day":     r.Day,
			"Time":    r.Time,
			"Course":  r.Course,
			"Code":    r.Code,
			"Faculty": r.Faculty,
			"Room":    r.Room,
		})
	}
	return out
}
