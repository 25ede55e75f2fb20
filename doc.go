/*
go-posetrack turns the raw keypoint output of a single-pose or multi-pose
estimation model into temporally stable, identity tracked skeletons and scores
the lifting form of one chosen body.

Each camera frame passes through the Pipeline which decodes the model
buffers, maps them from model space to screen pixels, matches them to tracked
identities by Object Keypoint Similarity, smooths them per identity and
analyses the focus body.  The stages are available individually in the pose,
preprocess, filter, tracker and analysis subpackages.

See example code and usage in the example subdirectory.
*/
package posetrack
