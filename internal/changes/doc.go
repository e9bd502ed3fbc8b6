// Package changes narrows a candidate file set to the files a version-control
// status query reports as changed.
//
// Connection strings follow the scm:<provider>:<location> convention, with
// the developer connection used when the primary connection is absent. Two
// git status backends are provided: GitStatusProvider reads the repository
// through go-git and CommandLineStatusProvider shells out to the git binary.
package changes
