package cache

// Keys shared by everything that reads or writes LMS data through the
// cache.

func CoursesKey() Key {
	return Key{"courses"}
}

func ContentTreeKey(courseId string) Key {
	return Key{"content-tree", courseId}
}

func AssignmentsKey(courseId string) Key {
	return Key{"assignments", courseId}
}

func QuizzesKey(courseId string) Key {
	return Key{"quizzes", courseId}
}

func GradesKey(courseId string) Key {
	return Key{"grades", courseId}
}

func AnnouncementsKey(courseId string) Key {
	return Key{"announcements", courseId}
}
