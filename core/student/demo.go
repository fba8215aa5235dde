package student

// DemoStudents returns the built-in demo roster used when neither the API nor the mirror has data.
func DemoStudents() []Student {
	return []Student{
		{
			ID:                1,
			AdmissionNumber:   "STD001",
			FullName:          "John Doe",
			ClassName:         "Grade 10A",
			Gender:            "Male",
			DateOfBirth:       "2008-05-15",
			ParentName:        "Robert Doe",
			ParentPhone:       "+1234567890",
			ParentEmail:       "robert.doe@example.com",
			Address:           "123 Main Street",
			BloodGroup:        "O+",
			Allergies:         "None",
			MedicalConditions: "None",
			Status:            StatusActive,
			AdmissionDate:     "2023-01-10",
			CreatedAt:         "2023-01-10T00:00:00Z",
			UpdatedAt:         "2023-01-10T00:00:00Z",
		},
		{
			ID:                2,
			AdmissionNumber:   "STD002",
			FullName:          "Jane Smith",
			ClassName:         "Grade 9B",
			Gender:            "Female",
			DateOfBirth:       "2009-08-22",
			ParentName:        "Mary Smith",
			ParentPhone:       "+1987654321",
			ParentEmail:       "mary.smith@example.com",
			Address:           "456 Oak Avenue",
			BloodGroup:        "A+",
			Allergies:         "Peanuts",
			MedicalConditions: "None",
			Status:            StatusActive,
			AdmissionDate:     "2023-02-15",
			CreatedAt:         "2023-02-15T00:00:00Z",
			UpdatedAt:         "2023-02-15T00:00:00Z",
		},
	}
}
