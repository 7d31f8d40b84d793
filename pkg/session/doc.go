/*
Package session defines the data shapes that cross the engine's
boundaries: the persisted snapshot, the tracking context, the submission
payload and the structured submission result.
*/
package session
