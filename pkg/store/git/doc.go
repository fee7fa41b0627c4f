// Package git runs the git commands needed to keep a watched directory
// committed and pushed to its remote: status, add, commit and push.
//
// It requires the git command in $PATH, since the pure Go git implementations
// aren't up to the task (see go-git issues #793 and #785 for instance), and
// because it must honor the user's own git config, hooks and credentials.
package git
