package repository

import "errors"

var (
	// ErrAlreadyAssigned is returned when an applicant already has a group.
	ErrAlreadyAssigned = errors.New("applicant already assigned to a group")
	// ErrGroupNotEmpty is returned when deleting a group that has members.
	ErrGroupNotEmpty = errors.New("group has members")
	// ErrStaleStatus is returned when a conditional status update matched
	// no row, meaning another writer changed the status first.
	ErrStaleStatus = errors.New("ticket status changed concurrently")
	// ErrCounterTaken is returned when claiming a counter that another
	// operator already staffs, or the operator staffs another counter.
	ErrCounterTaken = errors.New("counter or operator already claimed")
	// ErrCounterBusy is returned when calling the next queue ticket to a
	// counter that still holds a CALLED or SERVING one.
	ErrCounterBusy = errors.New("counter already holds an active queue ticket")
	// ErrApplicantMissing is returned by the group assignment when the
	// applicant row does not exist.
	ErrApplicantMissing = errors.New("applicant does not exist")
)
