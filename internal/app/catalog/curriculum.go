package catalog

// curriculum is the hand-authored subject table. Subject ids are persisted on
// content records and in blob paths, so existing triples must never change.
var curriculum = map[Branch]map[int][]Subject{
	BranchCSE: {
		1: {
			{ID: "cse-1-1", Name: "Engineering Mathematics I", Code: "MAT101"},
			{ID: "cse-1-2", Name: "Engineering Physics", Code: "PHY101"},
			{ID: "cse-1-3", Name: "Programming Fundamentals", Code: "CSE101"},
			{ID: "cse-1-4", Name: "Engineering Graphics", Code: "MEE101"},
		},
		2: {
			{ID: "cse-2-1", Name: "Engineering Mathematics II", Code: "MAT102"},
			{ID: "cse-2-2", Name: "Engineering Chemistry", Code: "CHE101"},
			{ID: "cse-2-3", Name: "Data Structures", Code: "CSE102"},
			{ID: "cse-2-4", Name: "Digital Electronics", Code: "ECE101"},
		},
		3: {
			{ID: "cse-3-1", Name: "Discrete Mathematics", Code: "MAT201"},
			{ID: "cse-3-2", Name: "Object Oriented Programming", Code: "CSE201"},
			{ID: "cse-3-3", Name: "Computer Organization", Code: "CSE202"},
			{ID: "cse-3-4", Name: "Database Management Systems", Code: "CSE203"},
		},
		4: {
			{ID: "cse-4-1", Name: "Operating Systems", Code: "CSE301"},
			{ID: "cse-4-2", Name: "Algorithm Design", Code: "CSE302"},
			{ID: "cse-4-3", Name: "Computer Networks", Code: "CSE303"},
			{ID: "cse-4-4", Name: "Software Engineering", Code: "CSE304"},
		},
		5: {
			{ID: "cse-5-1", Name: "Theory of Computation", Code: "CSE401"},
			{ID: "cse-5-2", Name: "Compiler Design", Code: "CSE402"},
			{ID: "cse-5-3", Name: "Artificial Intelligence", Code: "CSE403"},
			{ID: "cse-5-4", Name: "Web Technologies", Code: "CSE404"},
		},
		6: {
			{ID: "cse-6-1", Name: "Machine Learning", Code: "CSE501"},
			{ID: "cse-6-2", Name: "Information Security", Code: "CSE502"},
			{ID: "cse-6-3", Name: "Cloud Computing", Code: "CSE503"},
			{ID: "cse-6-4", Name: "Mobile App Development", Code: "CSE504"},
		},
		7: {
			{ID: "cse-7-1", Name: "Big Data Analytics", Code: "CSE601"},
			{ID: "cse-7-2", Name: "Deep Learning", Code: "CSE602"},
			{ID: "cse-7-3", Name: "Project Phase I", Code: "CSE603"},
		},
		8: {
			{ID: "cse-8-1", Name: "Blockchain Technology", Code: "CSE701"},
			{ID: "cse-8-2", Name: "Project Phase II", Code: "CSE702"},
		},
	},
	BranchEEE: {
		1: {
			{ID: "eee-1-1", Name: "Engineering Mathematics I", Code: "MAT101"},
			{ID: "eee-1-2", Name: "Engineering Physics", Code: "PHY101"},
			{ID: "eee-1-3", Name: "Basic Electrical Engineering", Code: "EEE101"},
			{ID: "eee-1-4", Name: "Engineering Graphics", Code: "MEE101"},
		},
		2: {
			{ID: "eee-2-1", Name: "Engineering Mathematics II", Code: "MAT102"},
			{ID: "eee-2-2", Name: "Circuit Theory", Code: "EEE102"},
			{ID: "eee-2-3", Name: "Electronic Devices", Code: "EEE103"},
			{ID: "eee-2-4", Name: "Programming Basics", Code: "CSE101"},
		},
		3: {
			{ID: "eee-3-1", Name: "Signals and Systems", Code: "EEE201"},
			{ID: "eee-3-2", Name: "Electrical Machines I", Code: "EEE202"},
			{ID: "eee-3-3", Name: "Analog Electronics", Code: "EEE203"},
			{ID: "eee-3-4", Name: "Electromagnetic Theory", Code: "EEE204"},
		},
		4: {
			{ID: "eee-4-1", Name: "Electrical Machines II", Code: "EEE301"},
			{ID: "eee-4-2", Name: "Control Systems", Code: "EEE302"},
			{ID: "eee-4-3", Name: "Power Systems I", Code: "EEE303"},
			{ID: "eee-4-4", Name: "Digital Signal Processing", Code: "EEE304"},
		},
		5: {
			{ID: "eee-5-1", Name: "Power Electronics", Code: "EEE401"},
			{ID: "eee-5-2", Name: "Power Systems II", Code: "EEE402"},
			{ID: "eee-5-3", Name: "Microprocessors", Code: "EEE403"},
			{ID: "eee-5-4", Name: "Instrumentation", Code: "EEE404"},
		},
		6: {
			{ID: "eee-6-1", Name: "High Voltage Engineering", Code: "EEE501"},
			{ID: "eee-6-2", Name: "Electric Drives", Code: "EEE502"},
			{ID: "eee-6-3", Name: "Renewable Energy Systems", Code: "EEE503"},
			{ID: "eee-6-4", Name: "Power System Protection", Code: "EEE504"},
		},
		7: {
			{ID: "eee-7-1", Name: "Smart Grid Technology", Code: "EEE601"},
			{ID: "eee-7-2", Name: "Industrial Automation", Code: "EEE602"},
			{ID: "eee-7-3", Name: "Project Phase I", Code: "EEE603"},
		},
		8: {
			{ID: "eee-8-1", Name: "Electric Vehicle Technology", Code: "EEE701"},
			{ID: "eee-8-2", Name: "Project Phase II", Code: "EEE702"},
		},
	},
	BranchMechanical: {
		1: {
			{ID: "mech-1-1", Name: "Engineering Mathematics I", Code: "MAT101"},
			{ID: "mech-1-2", Name: "Engineering Physics", Code: "PHY101"},
			{ID: "mech-1-3", Name: "Engineering Mechanics", Code: "MEE101"},
			{ID: "mech-1-4", Name: "Engineering Graphics", Code: "MEE102"},
		},
		2: {
			{ID: "mech-2-1", Name: "Engineering Mathematics II", Code: "MAT102"},
			{ID: "mech-2-2", Name: "Materials Science", Code: "MEE103"},
			{ID: "mech-2-3", Name: "Manufacturing Processes", Code: "MEE104"},
			{ID: "mech-2-4", Name: "Thermodynamics", Code: "MEE105"},
		},
		3: {
			{ID: "mech-3-1", Name: "Strength of Materials", Code: "MEE201"},
			{ID: "mech-3-2", Name: "Fluid Mechanics", Code: "MEE202"},
			{ID: "mech-3-3", Name: "Kinematics of Machines", Code: "MEE203"},
			{ID: "mech-3-4", Name: "Machine Drawing", Code: "MEE204"},
		},
		4: {
			{ID: "mech-4-1", Name: "Heat Transfer", Code: "MEE301"},
			{ID: "mech-4-2", Name: "Dynamics of Machines", Code: "MEE302"},
			{ID: "mech-4-3", Name: "Machine Design I", Code: "MEE303"},
			{ID: "mech-4-4", Name: "Industrial Engineering", Code: "MEE304"},
		},
		5: {
			{ID: "mech-5-1", Name: "Machine Design II", Code: "MEE401"},
			{ID: "mech-5-2", Name: "IC Engines", Code: "MEE402"},
			{ID: "mech-5-3", Name: "CAD/CAM", Code: "MEE403"},
			{ID: "mech-5-4", Name: "Refrigeration & AC", Code: "MEE404"},
		},
		6: {
			{ID: "mech-6-1", Name: "Automobile Engineering", Code: "MEE501"},
			{ID: "mech-6-2", Name: "Robotics", Code: "MEE502"},
			{ID: "mech-6-3", Name: "Finite Element Analysis", Code: "MEE503"},
			{ID: "mech-6-4", Name: "Operations Research", Code: "MEE504"},
		},
		7: {
			{ID: "mech-7-1", Name: "Additive Manufacturing", Code: "MEE601"},
			{ID: "mech-7-2", Name: "Mechatronics", Code: "MEE602"},
			{ID: "mech-7-3", Name: "Project Phase I", Code: "MEE603"},
		},
		8: {
			{ID: "mech-8-1", Name: "Advanced Manufacturing", Code: "MEE701"},
			{ID: "mech-8-2", Name: "Project Phase II", Code: "MEE702"},
		},
	},
	BranchECE: {
		1: {
			{ID: "ece-1-1", Name: "Engineering Mathematics I", Code: "MAT101"},
			{ID: "ece-1-2", Name: "Engineering Physics", Code: "PHY101"},
			{ID: "ece-1-3", Name: "Basic Electronics", Code: "ECE101"},
			{ID: "ece-1-4", Name: "Engineering Graphics", Code: "MEE101"},
		},
		2: {
			{ID: "ece-2-1", Name: "Engineering Mathematics II", Code: "MAT102"},
			{ID: "ece-2-2", Name: "Circuit Analysis", Code: "ECE102"},
			{ID: "ece-2-3", Name: "Electronic Devices", Code: "ECE103"},
			{ID: "ece-2-4", Name: "Programming Basics", Code: "CSE101"},
		},
		3: {
			{ID: "ece-3-1", Name: "Signals and Systems", Code: "ECE201"},
			{ID: "ece-3-2", Name: "Analog Circuits", Code: "ECE202"},
			{ID: "ece-3-3", Name: "Digital Electronics", Code: "ECE203"},
			{ID: "ece-3-4", Name: "Electromagnetic Waves", Code: "ECE204"},
		},
		4: {
			{ID: "ece-4-1", Name: "Communication Systems", Code: "ECE301"},
			{ID: "ece-4-2", Name: "Control Systems", Code: "ECE302"},
			{ID: "ece-4-3", Name: "Microprocessors", Code: "ECE303"},
			{ID: "ece-4-4", Name: "Linear Integrated Circuits", Code: "ECE304"},
		},
		5: {
			{ID: "ece-5-1", Name: "Digital Signal Processing", Code: "ECE401"},
			{ID: "ece-5-2", Name: "VLSI Design", Code: "ECE402"},
			{ID: "ece-5-3", Name: "Microcontrollers", Code: "ECE403"},
			{ID: "ece-5-4", Name: "Antenna & Wave Propagation", Code: "ECE404"},
		},
		6: {
			{ID: "ece-6-1", Name: "Embedded Systems", Code: "ECE501"},
			{ID: "ece-6-2", Name: "Wireless Communication", Code: "ECE502"},
			{ID: "ece-6-3", Name: "Optical Communication", Code: "ECE503"},
			{ID: "ece-6-4", Name: "Digital Image Processing", Code: "ECE504"},
		},
		7: {
			{ID: "ece-7-1", Name: "IoT Systems", Code: "ECE601"},
			{ID: "ece-7-2", Name: "Satellite Communication", Code: "ECE602"},
			{ID: "ece-7-3", Name: "Project Phase I", Code: "ECE603"},
		},
		8: {
			{ID: "ece-8-1", Name: "5G Technology", Code: "ECE701"},
			{ID: "ece-8-2", Name: "Project Phase II", Code: "ECE702"},
		},
	},
	BranchCivil: {
		1: {
			{ID: "civil-1-1", Name: "Engineering Mathematics I", Code: "MAT101"},
			{ID: "civil-1-2", Name: "Engineering Physics", Code: "PHY101"},
			{ID: "civil-1-3", Name: "Engineering Mechanics", Code: "CEE101"},
			{ID: "civil-1-4", Name: "Engineering Graphics", Code: "MEE101"},
		},
		2: {
			{ID: "civil-2-1", Name: "Engineering Mathematics II", Code: "MAT102"},
			{ID: "civil-2-2", Name: "Building Materials", Code: "CEE102"},
			{ID: "civil-2-3", Name: "Surveying", Code: "CEE103"},
			{ID: "civil-2-4", Name: "Geology", Code: "CEE104"},
		},
		3: {
			{ID: "civil-3-1", Name: "Structural Analysis I", Code: "CEE201"},
			{ID: "civil-3-2", Name: "Fluid Mechanics", Code: "CEE202"},
			{ID: "civil-3-3", Name: "Strength of Materials", Code: "CEE203"},
			{ID: "civil-3-4", Name: "Building Planning", Code: "CEE204"},
		},
		4: {
			{ID: "civil-4-1", Name: "Structural Analysis II", Code: "CEE301"},
			{ID: "civil-4-2", Name: "Geotechnical Engineering", Code: "CEE302"},
			{ID: "civil-4-3", Name: "Concrete Technology", Code: "CEE303"},
			{ID: "civil-4-4", Name: "Hydraulics", Code: "CEE304"},
		},
		5: {
			{ID: "civil-5-1", Name: "RCC Design", Code: "CEE401"},
			{ID: "civil-5-2", Name: "Transportation Engineering", Code: "CEE402"},
			{ID: "civil-5-3", Name: "Environmental Engineering", Code: "CEE403"},
			{ID: "civil-5-4", Name: "Foundation Engineering", Code: "CEE404"},
		},
		6: {
			{ID: "civil-6-1", Name: "Steel Structures", Code: "CEE501"},
			{ID: "civil-6-2", Name: "Hydrology & Irrigation", Code: "CEE502"},
			{ID: "civil-6-3", Name: "Highway Engineering", Code: "CEE503"},
			{ID: "civil-6-4", Name: "Quantity Surveying", Code: "CEE504"},
		},
		7: {
			{ID: "civil-7-1", Name: "Advanced Structural Design", Code: "CEE601"},
			{ID: "civil-7-2", Name: "Construction Management", Code: "CEE602"},
			{ID: "civil-7-3", Name: "Project Phase I", Code: "CEE603"},
		},
		8: {
			{ID: "civil-8-1", Name: "Green Building Technology", Code: "CEE701"},
			{ID: "civil-8-2", Name: "Project Phase II", Code: "CEE702"},
		},
	},
}

var modules = []Module{
	{ID: "module-1", Name: "Module 1", Description: "Introduction and Fundamentals"},
	{ID: "module-2", Name: "Module 2", Description: "Core Concepts"},
	{ID: "module-3", Name: "Module 3", Description: "Advanced Topics"},
	{ID: "module-4", Name: "Module 4", Description: "Applications"},
	{ID: "module-5", Name: "Module 5", Description: "Case Studies & Review"},
	{ID: "pyq", Name: "Previous Year Questions", Description: "Past exam papers"},
	{ID: "two-marks", Name: "Two-Mark Questions", Description: "Quick revision questions"},
}
