package flowapi

import "github.com/benvon/flow/internal/graphql"

const timeRecordFields = `id start end tags`

const taskFields = `id uuid description entry modified status urgency priority due project tags depends parent recur until start`

const userFields = `id username timewHook`

var (
	opTimeRecords = graphql.Operation{
		Name:  "TimeRecords",
		Query: `query TimeRecords { timeRecords { ` + timeRecordFields + ` } }`,
	}
	opTimeStart = graphql.Operation{
		Name:     "TimeStart",
		Query:    `mutation TimeStart { timeStart { ` + timeRecordFields + ` } }`,
		Mutation: true,
	}
	opTimeStop = graphql.Operation{
		Name:     "TimeStop",
		Query:    `mutation TimeStop { timeStop { ` + timeRecordFields + ` } }`,
		Mutation: true,
	}
	opDeleteTimeRecord = graphql.Operation{
		Name:     "DeleteTimeRecord",
		Query:    `mutation DeleteTimeRecord($id: ID!) { deleteTimeRecord(id: $id) { ` + timeRecordFields + ` } }`,
		Mutation: true,
	}
	opTagTimeRecord = graphql.Operation{
		Name:     "TagTimeRecord",
		Query:    `mutation TagTimeRecord($id: ID!, $tag: String!) { tagTimeRecord(id: $id, tag: $tag) { ` + timeRecordFields + ` } }`,
		Mutation: true,
	}
	opUntagTimeRecord = graphql.Operation{
		Name:     "UntagTimeRecord",
		Query:    `mutation UntagTimeRecord($id: ID!, $tag: String!) { untagTimeRecord(id: $id, tag: $tag) { ` + timeRecordFields + ` } }`,
		Mutation: true,
	}
	opModifyTimeRecordDate = graphql.Operation{
		Name:     "ModifyTimeRecordDate",
		Query:    `mutation ModifyTimeRecordDate($id: ID!, $start: String, $end: String) { modifyTimeRecordDate(id: $id, start: $start, end: $end) { ` + timeRecordFields + ` } }`,
		Mutation: true,
	}
)

var (
	opTasks = graphql.Operation{
		Name:  "Tasks",
		Query: `query Tasks($filter: TaskFilter) { tasks(filter: $filter) { ` + taskFields + ` } }`,
	}
	opRecentTaskTags = graphql.Operation{
		Name:  "RecentTaskTags",
		Query: `query RecentTaskTags { recentTaskTags }`,
	}
	opRecentTaskProjects = graphql.Operation{
		Name:  "RecentTaskProjects",
		Query: `query RecentTaskProjects { recentTaskProjects }`,
	}
	opCreateTask = graphql.Operation{
		Name:     "CreateTask",
		Query:    `mutation CreateTask($description: String!, $due: String, $project: String, $priority: String) { createTask(description: $description, due: $due, project: $project, priority: $priority) { ` + taskFields + ` } }`,
		Mutation: true,
	}
	opMarkTaskDone = graphql.Operation{
		Name:     "MarkTaskDone",
		Query:    `mutation MarkTaskDone($id: ID!) { markTaskDone(id: $id) { ` + taskFields + ` } }`,
		Mutation: true,
	}
	opEditTask = graphql.Operation{
		Name: "EditTask",
		Query: `mutation EditTask($id: ID!, $description: String, $due: String, $project: String, $priority: String, $tags: [String!], $depends: [String!], $recurring: String, $until: String) { ` +
			`editTask(id: $id, description: $description, due: $due, project: $project, priority: $priority, tags: $tags, depends: $depends, recurring: $recurring, until: $until) { ` + taskFields + ` } }`,
		Mutation: true,
	}
	opDeleteTask = graphql.Operation{
		Name:     "DeleteTask",
		Query:    `mutation DeleteTask($id: ID!) { deleteTask(id: $id) { ` + taskFields + ` } }`,
		Mutation: true,
	}
	opStartTask = graphql.Operation{
		Name:     "StartTask",
		Query:    `mutation StartTask($id: ID!) { startTask(id: $id) { ` + taskFields + ` } }`,
		Mutation: true,
	}
	opStopTask = graphql.Operation{
		Name:     "StopTask",
		Query:    `mutation StopTask($id: ID!) { stopTask(id: $id) { ` + taskFields + ` } }`,
		Mutation: true,
	}
)

var (
	opSignIn = graphql.Operation{
		Name:     "SignIn",
		Query:    `mutation SignIn($username: String!, $password: String!) { signIn(username: $username, password: $password) { token user { ` + userFields + ` } } }`,
		Mutation: true,
	}
	opSignUp = graphql.Operation{
		Name:     "SignUp",
		Query:    `mutation SignUp($password: String!, $username: String!) { signUp(password: $password, username: $username) { token user { ` + userFields + ` } } }`,
		Mutation: true,
	}
	opSignOut = graphql.Operation{
		Name:     "SignOut",
		Query:    `mutation SignOut { signOut }`,
		Mutation: true,
	}
	opMe = graphql.Operation{
		Name:  "Me",
		Query: `query Me { me { ` + userFields + ` } }`,
	}
	opSetTimewHook = graphql.Operation{
		Name:     "ModifyTimewHook",
		Query:    `mutation ModifyTimewHook($enabled: Boolean!) { setTimewHook(enabled: $enabled) }`,
		Mutation: true,
	}
)
