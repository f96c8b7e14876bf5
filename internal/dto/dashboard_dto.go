package dto

// DashboardActivity bundles one authorized activity with its instructor list
// and full submission list, scores included.
type DashboardActivity struct {
	Activity    ActivityResponse          `json:"activity"`
	Instructors []InstructorGrantResponse `json:"instructors"`
	Submissions []SubmissionResponse      `json:"submissions"`
}

// DashboardResponse is the instructor-scoped aggregate view.
type DashboardResponse struct {
	Email      string              `json:"email"`
	Activities []DashboardActivity `json:"activities"`
}

// StudentActivitiesResponse lists the enabled activities a student email has
// submissions in.
type StudentActivitiesResponse struct {
	Email      string             `json:"email"`
	Activities []ActivityResponse `json:"activities"`
}
