/*
Package playground wires the run trigger of the documentation sandbox.

# Overview

A Session owns one Editor and one Surface. Run reads the editor's current
text, assembles the Execution Document, converts it to a Render Target
Reference and mounts that reference on the surface:

	editor -> document.Assemble -> bridge.ToRenderableReference -> Surface.Mount

Frame is the in-process Surface. Every mount loads in a fresh sandbox
runtime, so no state carries over between runs. Mounts are not cancelled:
when runs overlap, the load that finishes last provides the visible output.

# Usage

	frame := playground.NewFrame(playground.SandboxConfig(sandbox.DefaultConfig(), document.DefaultLibraryURL))
	session := playground.NewSession(playground.NewBuffer("console.log('hey')"), frame)
	session.Run()
	frame.Wait()
	fmt.Println(frame.Output()) // [hey]

Watch re-runs a session whenever one of its watched files is written.
*/
package playground
