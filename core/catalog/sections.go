package catalog

// Sections is the demonstration catalog, in display order.
var Sections = []Section{
	{
		ID:          "basic",
		Title:       "1. Basic SQL Operations",
		Description: "Filtering, sorting and pattern matching on a single table.",
		Entries: []Entry{
			{
				ID:          "basic_select",
				Title:       "1.1 SELECT with WHERE",
				Description: "All students.",
				Query: `SELECT user_id, name, email, role, created_at
FROM users
WHERE role = 'student'`,
			},
			{
				ID:          "basic_order",
				Title:       "1.2 ORDER BY",
				Description: "The five most recently registered users.",
				Query: `SELECT user_id, name, email, created_at
FROM users
ORDER BY created_at DESC
LIMIT 5`,
			},
			{
				ID:          "basic_like",
				Title:       "1.3 LIKE",
				Description: "Courses whose title mentions Development.",
				Query: `SELECT course_id, title, description, price
FROM courses
WHERE title LIKE '%Development%'`,
			},
			{
				ID:          "basic_between",
				Title:       "1.4 BETWEEN",
				Description: "Courses priced between $80 and $100.",
				Query: `SELECT course_id, title, price, category_id
FROM courses
WHERE price BETWEEN 80 AND 100
ORDER BY price`,
			},
		},
	},
	{
		ID:          "joins",
		Title:       "2. JOIN Operations",
		Description: "Combining rows from related tables.",
		Entries: []Entry{
			{
				ID:          "join_inner",
				Title:       "2.1 INNER JOIN",
				Description: "Courses with their category and instructor (matching records only).",
				Query: `SELECT
    c.course_id,
    c.title AS course_title,
    c.price,
    cc.name AS category,
    u.name AS instructor
FROM courses c
INNER JOIN course_categories cc ON c.category_id = cc.category_id
INNER JOIN users u ON c.instructor_id = u.user_id
LIMIT 10`,
			},
			{
				ID:          "join_left",
				Title:       "2.2 LEFT JOIN",
				Description: "Every course with its enrollment count (including courses without enrollments).",
				Query: `SELECT
    c.course_id,
    c.title,
    c.price,
    COUNT(e.enrollment_id) AS total_enrollments
FROM courses c
LEFT JOIN enrollments e ON c.course_id = e.course_id
GROUP BY c.course_id
ORDER BY total_enrollments DESC
LIMIT 10`,
			},
			{
				ID:          "join_multiple",
				Title:       "2.3 Multiple JOINs",
				Description: "Latest enrollments with student, course and category.",
				Query: `SELECT
    u.name AS student_name,
    c.title AS course_title,
    cc.name AS category,
    e.progress,
    e.enrolled_at
FROM enrollments e
INNER JOIN users u ON e.student_id = u.user_id
INNER JOIN courses c ON e.course_id = c.course_id
INNER JOIN course_categories cc ON c.category_id = cc.category_id
ORDER BY e.enrolled_at DESC
LIMIT 10`,
			},
		},
	},
	{
		ID:          "aggregates",
		Title:       "3. Aggregate Functions",
		Description: "COUNT, AVG, SUM, MAX and MIN over groups of rows.",
		Entries: []Entry{
			{
				ID:          "agg_count",
				Title:       "3.1 COUNT",
				Description: "Users per role.",
				Query: `SELECT
    role,
    COUNT(*) AS total_users
FROM users
GROUP BY role
ORDER BY total_users DESC`,
			},
			{
				ID:          "agg_avg",
				Title:       "3.2 AVG",
				Description: "Average review rating per category.",
				Query: `SELECT
    cc.name AS category,
    COUNT(DISTINCT c.course_id) AS total_courses,
    ROUND(AVG(r.rating), 2) AS avg_rating,
    COUNT(r.review_id) AS total_reviews
FROM course_categories cc
LEFT JOIN courses c ON cc.category_id = c.category_id
LEFT JOIN reviews r ON c.course_id = r.course_id
GROUP BY cc.category_id
HAVING AVG(r.rating) IS NOT NULL
ORDER BY avg_rating DESC`,
			},
			{
				ID:          "agg_sum",
				Title:       "3.3 SUM",
				Description: "Top instructors by the summed price of their enrollments.",
				Query: `SELECT
    u.name AS instructor,
    COUNT(DISTINCT c.course_id) AS courses_taught,
    COUNT(e.enrollment_id) AS total_enrollments,
    SUM(c.price) AS total_revenue
FROM users u
INNER JOIN courses c ON u.user_id = c.instructor_id
LEFT JOIN enrollments e ON c.course_id = e.course_id
WHERE u.role = 'instructor'
GROUP BY u.user_id
ORDER BY total_revenue DESC
LIMIT 5`,
			},
			{
				ID:          "agg_max_min",
				Title:       "3.4 MAX & MIN",
				Description: "Price range per category.",
				Query: `SELECT
    cc.name AS category,
    MIN(c.price) AS lowest_price,
    MAX(c.price) AS highest_price,
    ROUND(AVG(c.price), 2) AS avg_price,
    COUNT(*) AS course_count
FROM course_categories cc
INNER JOIN courses c ON cc.category_id = c.category_id
GROUP BY cc.category_id
ORDER BY category`,
			},
		},
	},
	{
		ID:          "grouping",
		Title:       "4. GROUP BY & HAVING",
		Description: "Filtering groups after aggregation.",
		Entries: []Entry{
			{
				ID:          "group_having",
				Title:       "4.1 GROUP BY with HAVING",
				Description: "Courses with more than three enrollments.",
				Query: `SELECT
    c.title AS course,
    COUNT(e.enrollment_id) AS total_enrollments,
    ROUND(AVG(e.progress), 1) AS avg_progress,
    c.price
FROM courses c
LEFT JOIN enrollments e ON c.course_id = e.course_id
GROUP BY c.course_id
HAVING COUNT(e.enrollment_id) > 3
ORDER BY total_enrollments DESC`,
			},
			{
				ID:          "group_multiple",
				Title:       "4.2 Multiple GROUP BY",
				Description: "Submissions and average grade per student and course.",
				Query: `SELECT
    u.name AS student,
    c.title AS course,
    COUNT(s.submission_id) AS submissions,
    ROUND(AVG(s.grade), 2) AS avg_grade
FROM users u
INNER JOIN enrollments e ON u.user_id = e.student_id
INNER JOIN courses c ON e.course_id = c.course_id
LEFT JOIN assignments a ON c.course_id = a.course_id
LEFT JOIN submissions s ON a.assignment_id = s.assignment_id AND s.student_id = u.user_id
WHERE u.role = 'student'
GROUP BY u.user_id, c.course_id
HAVING COUNT(s.submission_id) > 0
ORDER BY avg_grade DESC NULLS LAST
LIMIT 10`,
			},
		},
	},
	{
		ID:          "subqueries",
		Title:       "5. Subqueries",
		Description: "Queries nested in WHERE, SELECT and FROM.",
		Entries: []Entry{
			{
				ID:          "sub_where",
				Title:       "5.1 Subquery in WHERE",
				Description: "Courses priced above the average price.",
				Query: `SELECT
    course_id,
    title,
    price,
    (SELECT ROUND(AVG(price), 2) FROM courses) AS avg_price
FROM courses
WHERE price > (SELECT AVG(price) FROM courses)
ORDER BY price DESC
LIMIT 10`,
			},
			{
				ID:          "sub_correlated",
				Title:       "5.2 Correlated Subquery",
				Description: "Students whose average grade is above 85.",
				Query: `SELECT
    u.name AS student,
    (SELECT ROUND(AVG(grade), 2) FROM submissions WHERE student_id = u.user_id) AS avg_grade,
    (SELECT COUNT(*) FROM enrollments WHERE student_id = u.user_id) AS courses_enrolled
FROM users u
WHERE u.role = 'student'
AND (SELECT AVG(grade) FROM submissions WHERE student_id = u.user_id) > 85
ORDER BY avg_grade DESC
LIMIT 10`,
			},
			{
				ID:          "sub_from",
				Title:       "5.3 Derived Table",
				Description: "Courses rated 4.0 or above, computed in a derived table.",
				Query: `SELECT
    course_title,
    avg_rating,
    review_count,
    enrollment_count
FROM (
    SELECT
        c.title AS course_title,
        ROUND(AVG(r.rating), 2) AS avg_rating,
        COUNT(DISTINCT r.review_id) AS review_count,
        COUNT(DISTINCT e.enrollment_id) AS enrollment_count
    FROM courses c
    LEFT JOIN reviews r ON c.course_id = r.course_id
    LEFT JOIN enrollments e ON c.course_id = e.course_id
    GROUP BY c.course_id
) AS course_stats
WHERE avg_rating >= 4.0
ORDER BY avg_rating DESC
LIMIT 10`,
			},
		},
	},
	{
		ID:          "set_operations",
		Title:       "6. Set Operations",
		Description: "Combining result sets with UNION and UNION ALL.",
		Entries: []Entry{
			{
				ID:          "set_union",
				Title:       "6.1 UNION",
				Description: "Instructors and reviewers in one list, without duplicates.",
				Query: `SELECT DISTINCT u.user_id, u.name, u.role, 'Instructor' AS category
FROM users u
WHERE u.role = 'instructor'
UNION
SELECT DISTINCT u.user_id, u.name, u.role, 'Reviewer' AS category
FROM users u
INNER JOIN reviews r ON u.user_id = r.student_id
ORDER BY user_id
LIMIT 15`,
			},
			{
				ID:          "set_union_all",
				Title:       "6.2 UNION ALL",
				Description: "Enrollment and review activity in one timeline.",
				Query: `SELECT c.title AS course, u.name AS user_name, 'Enrollment' AS action, e.enrolled_at AS action_date
FROM enrollments e
INNER JOIN courses c ON e.course_id = c.course_id
INNER JOIN users u ON e.student_id = u.user_id
UNION ALL
SELECT c.title AS course, u.name AS user_name, 'Review' AS action, r.created_at AS action_date
FROM reviews r
INNER JOIN courses c ON r.course_id = c.course_id
INNER JOIN users u ON r.student_id = u.user_id
ORDER BY action_date DESC
LIMIT 15`,
			},
		},
	},
	{
		ID:          "views",
		Title:       "7. Views",
		Description: "Stored queries created by the schema migrations.",
		Entries: []Entry{
			{
				ID:          "view_course",
				Title:       "7.1 course_overview",
				Description: "Courses with category, instructor, enrollments, progress and rating.",
				Query:       `SELECT * FROM course_overview ORDER BY total_enrollments DESC LIMIT 10`,
			},
			{
				ID:          "view_student",
				Title:       "7.2 student_performance",
				Description: "Per-student enrollments, progress and grades.",
				Query:       `SELECT * FROM student_performance ORDER BY avg_grade DESC NULLS LAST LIMIT 10`,
			},
			{
				ID:          "view_revenue",
				Title:       "7.3 category_revenue",
				Description: "Courses, enrollments and revenue per category.",
				Query:       `SELECT * FROM category_revenue ORDER BY total_revenue DESC NULLS LAST`,
			},
			{
				ID:          "view_instructor",
				Title:       "7.4 instructor_dashboard",
				Description: "Courses, students, revenue and rating per instructor.",
				Query:       `SELECT * FROM instructor_dashboard ORDER BY courses_taught DESC LIMIT 10`,
			},
			{
				ID:          "view_assignment",
				Title:       "7.5 assignment_status",
				Description: "Submissions and grades per assignment against the course's enrollments.",
				Query:       `SELECT * FROM assignment_status ORDER BY due_date DESC LIMIT 10`,
			},
		},
	},
	{
		ID:          "procedures",
		Title:       "8. Stored Procedures",
		Description: "Set-returning functions called like tables.",
		Entries: []Entry{
			{
				ID:          "proc_top_students",
				Title:       "8.1 get_top_students(5)",
				Description: "The five students with the best average grade.",
				Query:       `SELECT * FROM get_top_students(5)`,
			},
			{
				ID:          "proc_revenue",
				Title:       "8.2 course_revenue_report(1)",
				Description: "Enrollments, revenue and rating for course #1.",
				Query:       `SELECT * FROM course_revenue_report(1)`,
			},
		},
	},
	{
		ID:          "functions",
		Title:       "9. Functions",
		Description: "Scalar functions used inside queries.",
		Entries: []Entry{
			{
				ID:          "func_grade",
				Title:       "9.1 get_grade_letter()",
				Description: "Numeric grades with their letter grade.",
				Query: `SELECT
    s.submission_id,
    u.name AS student,
    a.title AS assignment,
    s.grade AS numeric_grade,
    get_grade_letter(s.grade) AS letter_grade
FROM submissions s
INNER JOIN users u ON s.student_id = u.user_id
INNER JOIN assignments a ON s.assignment_id = a.assignment_id
WHERE s.grade IS NOT NULL
ORDER BY s.grade DESC
LIMIT 10`,
			},
			{
				ID:          "func_completion",
				Title:       "9.2 course_completion_rate()",
				Description: "Share of enrollments at 100% progress per course.",
				Query: `SELECT
    c.course_id,
    c.title,
    course_completion_rate(c.course_id) AS completion_rate,
    COUNT(e.enrollment_id) AS enrollments
FROM courses c
LEFT JOIN enrollments e ON c.course_id = e.course_id
GROUP BY c.course_id
ORDER BY completion_rate DESC
LIMIT 10`,
			},
			{
				ID:          "func_count",
				Title:       "9.3 count_student_enrollments()",
				Description: "Enrollment count per student.",
				Query: `SELECT
    user_id,
    name,
    email,
    count_student_enrollments(user_id) AS total_enrollments
FROM users
WHERE role = 'student'
ORDER BY total_enrollments DESC
LIMIT 10`,
			},
		},
	},
	{
		ID:          "triggers",
		Title:       "10. Triggers",
		Description: "Row-level rules enforced by the database.",
		Entries: []Entry{
			{
				ID:          "trigger_list",
				Title:       "10.1 Installed triggers",
				Description: "Triggers defined in the public schema.",
				Query: `SELECT trigger_name, event_manipulation, event_object_table, action_timing, action_statement
FROM information_schema.triggers
WHERE trigger_schema = 'public'
ORDER BY event_object_table, trigger_name`,
			},
			{
				ID:          "trigger_impact",
				Title:       "10.2 Progress against submissions",
				Description: "Enrollment progress next to the submissions made for the course.",
				Query: `SELECT
    u.name AS student,
    c.title AS course,
    e.progress,
    COUNT(DISTINCT s.submission_id) AS submissions_made,
    (SELECT COUNT(*) FROM assignments WHERE course_id = c.course_id) AS total_assignments
FROM enrollments e
INNER JOIN users u ON e.student_id = u.user_id
INNER JOIN courses c ON e.course_id = c.course_id
LEFT JOIN assignments a ON c.course_id = a.course_id
LEFT JOIN submissions s ON a.assignment_id = s.assignment_id AND s.student_id = u.user_id
GROUP BY e.enrollment_id, u.user_id, c.course_id
HAVING COUNT(DISTINCT s.submission_id) > 0
ORDER BY e.progress DESC
LIMIT 10`,
			},
		},
	},
	{
		ID:          "advanced",
		Title:       "11. Advanced SQL Features",
		Description: "CASE, EXISTS, DISTINCT, date and string functions.",
		Entries: []Entry{
			{
				ID:          "adv_case",
				Title:       "11.1 CASE",
				Description: "Students bucketed by average progress.",
				Query: `SELECT
    u.name AS student,
    ROUND(AVG(e.progress), 1) AS avg_progress,
    COUNT(e.course_id) AS courses,
    CASE
        WHEN AVG(e.progress) >= 80 THEN 'Excellent'
        WHEN AVG(e.progress) >= 60 THEN 'Good'
        WHEN AVG(e.progress) >= 40 THEN 'Average'
        ELSE 'Needs Improvement'
    END AS performance_level
FROM users u
INNER JOIN enrollments e ON u.user_id = e.student_id
WHERE u.role = 'student'
GROUP BY u.user_id
ORDER BY avg_progress DESC
LIMIT 10`,
			},
			{
				ID:          "adv_exists",
				Title:       "11.2 EXISTS",
				Description: "Students who submitted at least one assignment.",
				Query: `SELECT
    u.user_id,
    u.name,
    u.email,
    (SELECT COUNT(*) FROM submissions WHERE student_id = u.user_id) AS total_submissions
FROM users u
WHERE u.role = 'student'
AND EXISTS (
    SELECT 1 FROM submissions s WHERE s.student_id = u.user_id
)
ORDER BY total_submissions DESC
LIMIT 10`,
			},
			{
				ID:          "adv_distinct",
				Title:       "11.3 DISTINCT",
				Description: "Courses and enrollments per category.",
				Query: `SELECT DISTINCT
    cc.name AS category,
    (SELECT COUNT(DISTINCT c2.course_id) FROM courses c2 WHERE c2.category_id = cc.category_id) AS courses,
    (SELECT COUNT(DISTINCT e2.enrollment_id)
     FROM enrollments e2
     INNER JOIN courses c3 ON e2.course_id = c3.course_id
     WHERE c3.category_id = cc.category_id) AS enrollments
FROM course_categories cc
ORDER BY enrollments DESC`,
			},
			{
				ID:          "adv_date",
				Title:       "11.4 Date functions",
				Description: "Assignments due in the next 30 days.",
				Query: `SELECT
    a.title AS assignment,
    c.title AS course,
    a.due_date,
    a.due_date - CURRENT_DATE AS days_remaining,
    COUNT(s.submission_id) AS submissions
FROM assignments a
INNER JOIN courses c ON a.course_id = c.course_id
LEFT JOIN submissions s ON a.assignment_id = s.assignment_id
WHERE a.due_date BETWEEN CURRENT_DATE AND CURRENT_DATE + INTERVAL '30 days'
GROUP BY a.assignment_id, c.course_id
ORDER BY a.due_date ASC
LIMIT 10`,
			},
			{
				ID:          "adv_string",
				Title:       "11.5 String functions",
				Description: "Upper-casing, masking and measuring user names and emails.",
				Query: `SELECT
    user_id,
    UPPER(name) AS name_upper,
    CONCAT(SUBSTRING(email FROM 1 FOR 3), '***@', SPLIT_PART(email, '@', 2)) AS masked_email,
    CONCAT(role, ' - ', UPPER(LEFT(name, 1))) AS role_initial,
    LENGTH(name) AS name_length
FROM users
LIMIT 10`,
			},
		},
	},
}
