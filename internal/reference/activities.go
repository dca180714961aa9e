package reference

import "math"

// DefaultActivityMinutes is the session length calories burned are estimated for.
const DefaultActivityMinutes = 45

type Activity struct {
	Name     string
	MET      float64
	Category string
}

// Activities is the ordered activity rotation.
var Activities = []Activity{
	{"Bodybalance", 3.5, "Wellness"},
	{"Pilates", 3.0, "Wellness"},
	{"Stretching", 2.5, "Wellness"},
	{"Swiss Ball", 3.2, "Wellness"},
	{"Yoga", 2.8, "Wellness"},
	{"Cardio Combat", 8.0, "Cardio"},
	{"Step", 7.5, "Cardio"},
	{"Step Beginner", 6.0, "Cardio"},
	{"Step Intermediate", 6.8, "Cardio"},
	{"LIA", 5.5, "Cardio"},
	{"Bodypump", 7.0, "Strength"},
	{"Body Sculpt", 6.5, "Strength"},
	{"Legs Abs Glutes", 6.0, "Strength"},
	{"RPM", 8.5, "Cardio"},
	{"Zumba", 8.0, "Cardio"},
	{"Hyrox", 9.0, "High intensity"},
	{"HBX Boxing", 8.5, "High intensity"},
	{"HBX Fusion", 8.8, "High intensity"},
	{"HBX Move", 8.0, "High intensity"},
	{"Cardio & weights", 6.5, "Open access"},
	{"Climbing", 5.5, "Open access"},
	{"Golf", 3.0, "Open access"},
	{"Squash", 9.0, "Open access"},
	{"Active rest", 1.5, "Light activity"},
	{"Walking", 3.5, "Light activity"},
	{"Free stretching", 2.3, "Light activity"},
}

// ActivityNames returns the rotation names in order.
func ActivityNames() []string {
	names := make([]string, len(Activities))
	for i, a := range Activities {
		names[i] = a.Name
	}
	return names
}

// MET returns the MET value of the named activity.
func MET(name string) (float64, bool) {
	for _, a := range Activities {
		if a.Name == name {
			return a.MET, true
		}
	}
	return 0, false
}

// ActivitiesByCategory groups the activities by category, keeping rotation order.
func ActivitiesByCategory() map[string][]Activity {
	out := make(map[string][]Activity)
	for _, a := range Activities {
		out[a.Category] = append(out[a.Category], a)
	}
	return out
}

// CaloriesBurned estimates kcal burned as MET × kg × 3.5 / 200 per minute.
// ok is false when the activity has no MET value; the estimate is then 0.
func CaloriesBurned(activity string, weightKg float64, minutes int) (kcal int, ok bool) {
	met, ok := MET(activity)
	if !ok {
		return 0, false
	}
	return int(math.Floor(met*weightKg*3.5/200*float64(minutes) + 0.5)), true
}
