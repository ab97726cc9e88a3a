package db

import "time"

// Volunteer is the network shape of a volunteer row in the cloud replica
type Volunteer struct {
	ID             string    `ssql_header:"id" ssql_type:"uuid"`
	FirstName      string    `ssql_header:"first_name" ssql_type:"text"`
	LastName       string    `ssql_header:"last_name" ssql_type:"text"`
	Email          string    `ssql_header:"email" ssql_type:"text"`
	Phone          string    `ssql_header:"phone" ssql_type:"text"`
	RecurringDays  []string  `ssql_header:"recurring_days" ssql_type:"list"`
	RecurringSlots []string  `ssql_header:"recurring_slots" ssql_type:"list"`
	CreatedAt      time.Time `ssql_header:"created_at" ssql_type:"timestamp"`
	UpdatedAt      time.Time `ssql_header:"updated_at" ssql_type:"timestamp"`
	Deleted        bool      `ssql_header:"deleted" ssql_type:"bool"`
}

// Signup is the network shape of a signup row in the cloud replica
type Signup struct {
	ID          string    `ssql_header:"id" ssql_type:"uuid"`
	VolunteerID string    `ssql_header:"volunteer_id" ssql_type:"uuid"`
	Date        string    `ssql_header:"date" ssql_type:"date"`
	DayOfWeek   string    `ssql_header:"day_of_week" ssql_type:"text"`
	Role        string    `ssql_header:"role" ssql_type:"text"`
	Status      string    `ssql_header:"status" ssql_type:"text"`
	CreatedAt   time.Time `ssql_header:"created_at" ssql_type:"timestamp"`
	UpdatedAt   time.Time `ssql_header:"updated_at" ssql_type:"timestamp"`
	Deleted     bool      `ssql_header:"deleted" ssql_type:"bool"`
}
