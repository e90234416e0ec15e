/*
Package geom provides the small amount of rigid-body math the frame graph needs.

A Transform maps a point p to R*p + T: the rotation is applied first, then the
translation. Composition follows the same rule, so a.Then(b) is the transform that
applies a and then b.
*/
package geom
